package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
)

func TestRequirementTransitions(t *testing.T) {
	cases := []struct {
		from model.RequirementStatus
		ev   Event
		to   model.RequirementStatus
	}{
		{model.RequirementDraft, EventPlanRequested, model.RequirementPlanning},
		{model.RequirementPlanning, EventPlanReady, model.RequirementPlanned},
		{model.RequirementPlanning, EventPlanFailed, model.RequirementDraft},
		{model.RequirementPlanned, EventImplementationStarted, model.RequirementImplementing},
		{model.RequirementImplementing, EventImplementationSucceeded, model.RequirementCompleted},
		{model.RequirementImplementing, EventImplementationFailed, model.RequirementFailed},
	}
	for _, tc := range cases {
		got, err := NextRequirementStatus(tc.from, tc.ev)
		require.NoError(t, err, "%s on %s", tc.ev, tc.from)
		assert.Equal(t, tc.to, got)
	}
}

func TestRequirementIllegalTransitions(t *testing.T) {
	illegal := []struct {
		from model.RequirementStatus
		ev   Event
	}{
		{model.RequirementDraft, EventPlanReady},
		{model.RequirementDraft, EventImplementationStarted},
		{model.RequirementPlanned, EventPlanRequested},
		{model.RequirementCompleted, EventPlanRequested},
		{model.RequirementFailed, EventImplementationStarted},
		{model.RequirementImplementing, EventPlanReady},
	}
	for _, tc := range illegal {
		_, err := NextRequirementStatus(tc.from, tc.ev)
		require.Error(t, err, "%s on %s should be rejected", tc.ev, tc.from)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
	}
}

func TestImplementationTransitions(t *testing.T) {
	got, err := NextImplementationStatus(model.ImplementationNotStarted, EventImplementationStarted)
	require.NoError(t, err)
	assert.Equal(t, model.ImplementationInProgress, got)

	got, err = NextImplementationStatus(model.ImplementationInProgress, EventImplementationSucceeded)
	require.NoError(t, err)
	assert.Equal(t, model.ImplementationPRCreated, got)

	got, err = NextImplementationStatus(model.ImplementationInProgress, EventImplementationFailed)
	require.NoError(t, err)
	assert.Equal(t, model.ImplementationFailed, got)

	got, err = NextImplementationStatus(model.ImplementationPRCreated, EventPRMerged)
	require.NoError(t, err)
	assert.Equal(t, model.ImplementationPRMerged, got)

	// Terminal states accept nothing.
	_, err = NextImplementationStatus(model.ImplementationPRMerged, EventImplementationStarted)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
	_, err = NextImplementationStatus(model.ImplementationFailed, EventImplementationStarted)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}

func TestCanCreatePlan(t *testing.T) {
	req := &model.Requirement{ID: "r1", Status: model.RequirementDraft}
	assert.NoError(t, CanCreatePlan(req, nil))

	req.Status = model.RequirementPlanned
	err := CanCreatePlan(req, nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))

	req.Status = model.RequirementDraft
	err = CanCreatePlan(req, &model.Plan{ID: "p1"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestCanStartImplementation(t *testing.T) {
	plan := &model.Plan{
		ID:                   "p1",
		Content:              "do the thing",
		ImplementationStatus: model.ImplementationNotStarted,
	}
	assert.NoError(t, CanStartImplementation(plan, ""))
	assert.NoError(t, CanStartImplementation(plan, "do the thing"))

	err := CanStartImplementation(plan, "do the thing, but edited")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation), "unsaved client edits must be rejected")

	plan.Content = "   "
	err = CanStartImplementation(plan, "")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	plan.Content = "do the thing"
	plan.ImplementationStatus = model.ImplementationInProgress
	err = CanStartImplementation(plan, "")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}
