package lifecycle

import (
	"strings"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
)

// CanCreatePlan checks the preconditions for starting plan generation:
// the requirement must be a draft and must not already own a plan.
func CanCreatePlan(req *model.Requirement, existing *model.Plan) error {
	if req.Status != model.RequirementDraft {
		return apperr.InvalidState("requirement %s is %q, plan generation requires draft", req.ID, req.Status)
	}
	if existing != nil {
		return apperr.Validation("requirement %s already has plan %s", req.ID, existing.ID)
	}
	return nil
}

// CanStartImplementation checks the preconditions for kicking off an
// implementation job. clientContent is the plan text the caller is looking at;
// when non-empty it must match what was last persisted, so a client holding
// unsaved edits cannot implement a stale plan.
func CanStartImplementation(plan *model.Plan, clientContent string) error {
	if plan.ImplementationStatus != model.ImplementationNotStarted {
		return apperr.InvalidState("plan %s implementation is %q, expected not_started", plan.ID, plan.ImplementationStatus)
	}
	if strings.TrimSpace(plan.Content) == "" {
		return apperr.Validation("plan %s has no content to implement", plan.ID)
	}
	if clientContent != "" && clientContent != plan.Content {
		return apperr.Validation("plan %s has unsaved edits, save the plan before implementing", plan.ID)
	}
	return nil
}
