package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
	"github.com/planMaster/backend/internal/store"
)

func newRequirementFixture(t *testing.T) (*RequirementService, *store.Store, string) {
	t.Helper()
	st := store.New(store.NewMemoryKV())
	projects := NewProjectService(st)
	p, err := projects.Create(context.Background(), "demo", "", model.Repository{FullName: "acme/demo"})
	require.NoError(t, err)
	return NewRequirementService(st), st, p.ID
}

func setRequirementStatus(t *testing.T, st *store.Store, id string, status model.RequirementStatus) {
	t.Helper()
	require.NoError(t, st.Update(context.Background(), func(c *store.Collections) error {
		c.Requirement(id).Status = status
		return nil
	}))
}

func TestRequirementAdd(t *testing.T) {
	svc, _, projectID := newRequirementFixture(t)
	ctx := context.Background()

	req, err := svc.Add(ctx, projectID, "support SSO")
	require.NoError(t, err)
	assert.Equal(t, model.RequirementDraft, req.Status)
	assert.Equal(t, projectID, req.ProjectID)

	_, err = svc.Add(ctx, projectID, "   ")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = svc.Add(ctx, "no-such-project", "text")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestRequirementUpdateOnlyDrafts(t *testing.T) {
	svc, st, projectID := newRequirementFixture(t)
	ctx := context.Background()

	req, err := svc.Add(ctx, projectID, "v1")
	require.NoError(t, err)

	got, err := svc.Update(ctx, req.ID, "v2")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Text)

	setRequirementStatus(t, st, req.ID, model.RequirementPlanning)
	_, err = svc.Update(ctx, req.ID, "v3")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}

func TestRequirementDeleteRefusedWhileJobInFlight(t *testing.T) {
	svc, st, projectID := newRequirementFixture(t)
	ctx := context.Background()

	req, err := svc.Add(ctx, projectID, "text")
	require.NoError(t, err)

	for _, status := range []model.RequirementStatus{model.RequirementPlanning, model.RequirementImplementing} {
		setRequirementStatus(t, st, req.ID, status)
		err := svc.Delete(ctx, req.ID)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState), "delete during %s must be refused", status)
	}

	setRequirementStatus(t, st, req.ID, model.RequirementPlanned)
	require.NoError(t, svc.Delete(ctx, req.ID))

	_, err = svc.Get(ctx, req.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
