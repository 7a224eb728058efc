package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/codegen"
	"github.com/planMaster/backend/internal/model"
	"github.com/planMaster/backend/internal/notify"
	"github.com/planMaster/backend/internal/store"
	"github.com/planMaster/backend/pkg/codegenapi"
)

type fakeAgent struct {
	createErr error
	runStatus string
	runResult string
	prompts   []string
}

func (f *fakeAgent) CreateAgentRun(_ context.Context, _, prompt string) (*codegenapi.AgentRun, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.prompts = append(f.prompts, prompt)
	return &codegenapi.AgentRun{ID: json.Number("101"), Status: codegenapi.StatusPending}, nil
}

func (f *fakeAgent) GetAgentRun(context.Context, string, string) (*codegenapi.AgentRun, error) {
	return &codegenapi.AgentRun{ID: json.Number("101"), Status: f.runStatus, Result: f.runResult}, nil
}

func (f *fakeAgent) GetAgentRunLogs(context.Context, string, string) ([]string, error) {
	return nil, nil
}

type fixture struct {
	store    *store.Store
	pool     *codegen.Pool
	poller   *codegen.Poller
	plans    *PlanService
	projects *ProjectService
	reqs     *RequirementService
	notifs   *NotificationService
}

func newFixture(t *testing.T, api codegen.AgentAPI) *fixture {
	t.Helper()
	st := store.New(store.NewMemoryKV())
	notifs := NewNotificationService(st)
	notifier := notify.NewStoreNotifier(notifs)

	cfg := codegen.PollConfig{InitialDelay: time.Millisecond, Interval: time.Millisecond, MaxAttempts: 5}
	pool := codegen.NewPool(2)
	t.Cleanup(pool.Shutdown)
	poller := codegen.NewPoller(api, st, notifier, pool, cfg, cfg)

	projects := NewProjectService(st)
	projects.SetJobCanceller(poller)

	return &fixture{
		store:    st,
		pool:     pool,
		poller:   poller,
		plans:    NewPlanService(st, api, poller, notifier, "org-1"),
		projects: projects,
		reqs:     NewRequirementService(st),
		notifs:   notifs,
	}
}

func (f *fixture) seedRequirement(t *testing.T) *model.Requirement {
	t.Helper()
	ctx := context.Background()
	project, err := f.projects.Create(ctx, "demo", "", model.Repository{FullName: "acme/demo", DefaultBranch: "main"})
	require.NoError(t, err)
	req, err := f.reqs.Add(ctx, project.ID, "add login with magic links")
	require.NoError(t, err)
	return req
}

func TestCreatePlanHappyPath(t *testing.T) {
	api := &fakeAgent{runStatus: codegenapi.StatusCompleted, runResult: "1. add endpoint\n2. add tests"}
	f := newFixture(t, api)
	req := f.seedRequirement(t)
	ctx := context.Background()

	plan, err := f.plans.CreatePlan(ctx, req.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "101", plan.AgentRunID)
	assert.Equal(t, model.ImplementationNotStarted, plan.ImplementationStatus)

	f.poller.Wait()

	got, err := f.reqs.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequirementPlanned, got.Status)
	require.NotNil(t, got.Plan)
	assert.Equal(t, "1. add endpoint\n2. add tests", got.Plan.Content)
	assert.False(t, got.Plan.IsEdited)

	require.Len(t, api.prompts, 1)
	assert.Contains(t, api.prompts[0], "acme/demo")
	assert.Contains(t, api.prompts[0], "add login with magic links")

	count, err := f.notifs.UnreadCount(ctx, req.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreatePlanRejectsNonDraft(t *testing.T) {
	api := &fakeAgent{runStatus: codegenapi.StatusCompleted, runResult: "plan"}
	f := newFixture(t, api)
	req := f.seedRequirement(t)
	ctx := context.Background()

	_, err := f.plans.CreatePlan(ctx, req.ID, "")
	require.NoError(t, err)

	// Requirement is now planning; a second request must be refused.
	_, err = f.plans.CreatePlan(ctx, req.ID, "")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
	f.poller.Wait()
}

func TestCreatePlanRevertsOnRemoteFailure(t *testing.T) {
	api := &fakeAgent{createErr: errors.New("agent service is down")}
	f := newFixture(t, api)
	req := f.seedRequirement(t)
	ctx := context.Background()

	_, err := f.plans.CreatePlan(ctx, req.ID, "")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeExternalJob))

	got, err := f.reqs.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequirementDraft, got.Status, "failed remote create must roll the requirement back")
	assert.Nil(t, got.Plan, "the provisional plan row must be removed")
}

func TestCreatePlanRequiresOrganization(t *testing.T) {
	api := &fakeAgent{}
	f := newFixture(t, api)
	f.plans = NewPlanService(f.store, api, f.poller, notify.NoopNotifier{}, "")
	req := f.seedRequirement(t)

	_, err := f.plans.CreatePlan(context.Background(), req.ID, "")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestUpdatePlanTracksEdits(t *testing.T) {
	api := &fakeAgent{runStatus: codegenapi.StatusCompleted, runResult: "original plan"}
	f := newFixture(t, api)
	req := f.seedRequirement(t)
	ctx := context.Background()

	plan, err := f.plans.CreatePlan(ctx, req.ID, "")
	require.NoError(t, err)
	f.poller.Wait()

	updated, err := f.plans.UpdatePlan(ctx, plan.ID, "edited plan")
	require.NoError(t, err)
	assert.True(t, updated.IsEdited)
	assert.Equal(t, "original plan", updated.OriginalContent)

	// Restoring the original text clears the flag; it is derived, not sticky.
	updated, err = f.plans.UpdatePlan(ctx, plan.ID, "original plan")
	require.NoError(t, err)
	assert.False(t, updated.IsEdited)
}

func TestStartImplementationHappyPath(t *testing.T) {
	api := &fakeAgent{runStatus: codegenapi.StatusCompleted, runResult: "merged via https://github.com/acme/demo/pull/7"}
	f := newFixture(t, api)
	req := f.seedRequirement(t)
	ctx := context.Background()

	plan, err := f.plans.CreatePlan(ctx, req.ID, "")
	require.NoError(t, err)
	f.poller.Wait()

	err = f.plans.StartImplementation(ctx, plan.ID, "", "")
	require.NoError(t, err)
	f.poller.Wait()

	got, err := f.reqs.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequirementCompleted, got.Status)
	require.NotNil(t, got.Plan)
	assert.Equal(t, model.ImplementationPRCreated, got.Plan.ImplementationStatus)
	assert.Equal(t, "https://github.com/acme/demo/pull/7", got.Plan.PRURL)

	// plan ready, implementation started, implementation completed
	notifications, err := f.notifs.List(ctx, req.ProjectID)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	assert.Equal(t, model.NotificationImplementationCompleted, notifications[0].Type, "newest first")
}

func TestStartImplementationRejectsUnsavedEdits(t *testing.T) {
	api := &fakeAgent{runStatus: codegenapi.StatusCompleted, runResult: "the plan"}
	f := newFixture(t, api)
	req := f.seedRequirement(t)
	ctx := context.Background()

	plan, err := f.plans.CreatePlan(ctx, req.ID, "")
	require.NoError(t, err)
	f.poller.Wait()

	err = f.plans.StartImplementation(ctx, plan.ID, "", "the plan, with edits the client never saved")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	got, err := f.reqs.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequirementPlanned, got.Status, "a rejected start changes nothing")
}

func TestStartImplementationRevertsOnRemoteFailure(t *testing.T) {
	api := &fakeAgent{runStatus: codegenapi.StatusCompleted, runResult: "the plan"}
	f := newFixture(t, api)
	req := f.seedRequirement(t)
	ctx := context.Background()

	plan, err := f.plans.CreatePlan(ctx, req.ID, "")
	require.NoError(t, err)
	f.poller.Wait()

	api.createErr = errors.New("quota exceeded")
	err = f.plans.StartImplementation(ctx, plan.ID, "", "")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeExternalJob))

	got, err := f.reqs.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequirementPlanned, got.Status)
	require.NotNil(t, got.Plan)
	assert.Equal(t, model.ImplementationNotStarted, got.Plan.ImplementationStatus)
}

func TestGetByRequirement(t *testing.T) {
	api := &fakeAgent{runStatus: codegenapi.StatusCompleted, runResult: "the plan"}
	f := newFixture(t, api)
	req := f.seedRequirement(t)
	ctx := context.Background()

	_, err := f.plans.GetByRequirement(ctx, req.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "no plan yet")

	_, err = f.plans.CreatePlan(ctx, req.ID, "")
	require.NoError(t, err)
	f.poller.Wait()

	plan, err := f.plans.GetByRequirement(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "the plan", plan.Content)

	_, err = f.plans.GetByRequirement(ctx, "no-such-requirement")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
