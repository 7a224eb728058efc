// Package lifecycle holds the pure transition rules for requirement and
// implementation status. It performs no I/O; callers apply the returned state
// and persist it themselves.
package lifecycle

import (
	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
)

// Event is an action that may advance a requirement or plan.
type Event string

const (
	EventPlanRequested           Event = "plan_requested"
	EventPlanReady               Event = "plan_ready"
	EventPlanFailed              Event = "plan_failed"
	EventImplementationStarted   Event = "implementation_started"
	EventImplementationSucceeded Event = "implementation_succeeded"
	EventImplementationFailed    Event = "implementation_failed"
	EventPRMerged                Event = "pr_merged"
)

// The transition tables are the single source of truth. A (state, event) pair
// absent from its table is an illegal transition.

var requirementTransitions = map[model.RequirementStatus]map[Event]model.RequirementStatus{
	model.RequirementDraft: {
		EventPlanRequested: model.RequirementPlanning,
	},
	model.RequirementPlanning: {
		EventPlanReady:  model.RequirementPlanned,
		EventPlanFailed: model.RequirementDraft,
	},
	model.RequirementPlanned: {
		EventImplementationStarted: model.RequirementImplementing,
	},
	model.RequirementImplementing: {
		EventImplementationSucceeded: model.RequirementCompleted,
		EventImplementationFailed:    model.RequirementFailed,
	},
}

var implementationTransitions = map[model.ImplementationStatus]map[Event]model.ImplementationStatus{
	model.ImplementationNotStarted: {
		EventImplementationStarted: model.ImplementationInProgress,
	},
	model.ImplementationInProgress: {
		EventImplementationSucceeded: model.ImplementationPRCreated,
		EventImplementationFailed:    model.ImplementationFailed,
	},
	// pr_merged is driven by external confirmation, never by the poller.
	model.ImplementationPRCreated: {
		EventPRMerged: model.ImplementationPRMerged,
	},
}

// NextRequirementStatus returns the state a requirement moves to on event.
func NextRequirementStatus(cur model.RequirementStatus, ev Event) (model.RequirementStatus, error) {
	if next, ok := requirementTransitions[cur][ev]; ok {
		return next, nil
	}
	return "", apperr.InvalidState("requirement in status %q cannot accept event %q", cur, ev)
}

// NextImplementationStatus returns the state a plan's implementation moves to
// on event.
func NextImplementationStatus(cur model.ImplementationStatus, ev Event) (model.ImplementationStatus, error) {
	if next, ok := implementationTransitions[cur][ev]; ok {
		return next, nil
	}
	return "", apperr.InvalidState("implementation in status %q cannot accept event %q", cur, ev)
}
