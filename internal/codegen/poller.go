package codegen

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/lifecycle"
	"github.com/planMaster/backend/internal/model"
	"github.com/planMaster/backend/internal/notify"
	"github.com/planMaster/backend/internal/store"
	"github.com/planMaster/backend/pkg/codegenapi"
)

type JobKind string

const (
	JobPlan           JobKind = "plan"
	JobImplementation JobKind = "implementation"
)

// PollConfig bounds one poll chain. MaxAttempts counts status fetches; a
// transient fetch error consumes an attempt like a pending status does.
type PollConfig struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  uint64
}

// DefaultPlanPoll gives plan generation a ~5 minute budget and
// DefaultImplementationPoll gives implementation ~10 minutes.
var (
	DefaultPlanPoll           = PollConfig{InitialDelay: 5 * time.Second, Interval: 10 * time.Second, MaxAttempts: 30}
	DefaultImplementationPoll = PollConfig{InitialDelay: 5 * time.Second, Interval: 10 * time.Second, MaxAttempts: 60}
)

// Job identifies one remote agent run and the entities it advances.
type Job struct {
	Kind          JobKind
	OrgID         string
	RunID         string
	ProjectID     string
	RequirementID string
	PlanID        string
}

// Poller owns every in-flight poll chain, keyed by agent run ID. Once a chain
// finalizes (success, failure, or timeout) it is inert: it drops its run
// reference and never touches the remote job again.
type Poller struct {
	api      AgentAPI
	store    *store.Store
	notifier notify.Notifier
	pool     *Pool
	planCfg  PollConfig
	implCfg  PollConfig

	mu      sync.Mutex
	running map[string]*watch
	wg      sync.WaitGroup
}

type watch struct {
	projectID string
	cancel    context.CancelFunc
}

func NewPoller(api AgentAPI, st *store.Store, notifier notify.Notifier, pool *Pool, planCfg, implCfg PollConfig) *Poller {
	return &Poller{
		api:      api,
		store:    st,
		notifier: notifier,
		pool:     pool,
		planCfg:  planCfg,
		implCfg:  implCfg,
		running:  make(map[string]*watch),
	}
}

// Watch schedules a poll chain for the job and returns immediately.
func (p *Poller) Watch(job Job) {
	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	p.running[job.RunID] = &watch{projectID: job.ProjectID, cancel: cancel}
	p.mu.Unlock()

	p.wg.Add(1)
	p.pool.Submit(func() {
		defer p.wg.Done()
		defer p.forget(job.RunID)
		p.run(ctx, job)
	})
}

// CancelProject cancels every poll chain belonging to the project. Called on
// project deletion so finalizers never write back under a deleted parent.
func (p *Poller) CancelProject(projectID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for runID, w := range p.running {
		if w.projectID == projectID {
			log.Printf("[poller] cancelling run %s, project %s deleted", runID, projectID)
			w.cancel()
		}
	}
}

// Wait blocks until all in-flight chains have finalized. Used on shutdown and
// by tests.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) forget(runID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.running[runID]; ok {
		w.cancel()
		delete(p.running, runID)
	}
}

func (p *Poller) config(kind JobKind) PollConfig {
	if kind == JobImplementation {
		return p.implCfg
	}
	return p.planCfg
}

var errStillPending = errors.New("agent run still pending")

func (p *Poller) run(ctx context.Context, job Job) {
	cfg := p.config(job.Kind)

	select {
	case <-time.After(cfg.InitialDelay):
	case <-ctx.Done():
		log.Printf("[poller] %s run %s cancelled before first poll", job.Kind, job.RunID)
		return
	}

	var run *codegenapi.AgentRun
	operation := func() error {
		r, err := p.api.GetAgentRun(ctx, job.OrgID, job.RunID)
		if err != nil {
			// Transient fetch errors burn attempts instead of killing the
			// chain; a single flaky poll must not fail the job.
			log.Printf("[poller] fetch %s run %s: %v", job.Kind, job.RunID, err)
			return err
		}
		if !r.Terminal() {
			return errStillPending
		}
		run = r
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Interval), cfg.MaxAttempts-1),
		ctx,
	)
	err := backoff.Retry(operation, bo)

	switch {
	case ctx.Err() != nil:
		log.Printf("[poller] %s run %s cancelled, result discarded", job.Kind, job.RunID)
		return
	case err != nil || run == nil:
		// Budget exhausted without a terminal status: a timeout is a failure.
		p.finalizeFailure(job, apperr.Timeout("agent run %s not finished after %d attempts", job.RunID, cfg.MaxAttempts))
		return
	}

	if run.Status == codegenapi.StatusFailed {
		p.finalizeFailure(job, apperr.ExternalJob("agent run %s reported failure", job.RunID))
		return
	}

	switch job.Kind {
	case JobImplementation:
		p.finalizeImplementationSuccess(job, run)
	default:
		p.finalizePlanSuccess(job, run)
	}
}

func (p *Poller) finalizePlanSuccess(job Job, run *codegenapi.AgentRun) {
	ctx := context.Background()

	var logs []string
	if run.Result == "" {
		var err error
		logs, err = p.api.GetAgentRunLogs(ctx, job.OrgID, job.RunID)
		if err != nil {
			log.Printf("[poller] fetch logs for plan run %s: %v", job.RunID, err)
		}
	}
	text := codegenapi.ExtractPlan(run.Result, logs)
	if text == "" {
		p.finalizeFailure(job, apperr.ExternalJob("agent run %s completed without plan text", job.RunID))
		return
	}

	var event notify.PlanReadyEvent
	err := p.store.Update(ctx, func(c *store.Collections) error {
		req, plan, err := p.targets(c, job)
		if err != nil {
			return err
		}
		next, err := lifecycle.NextRequirementStatus(req.Status, lifecycle.EventPlanReady)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		plan.Content = text
		plan.OriginalContent = text
		plan.RecomputeEdited()
		plan.UpdatedAt = now
		req.Status = next
		req.UpdatedAt = now
		event = notify.PlanReadyEvent{
			ProjectID:       job.ProjectID,
			RequirementID:   req.ID,
			RequirementText: req.Text,
			PlanID:          plan.ID,
		}
		return nil
	})
	if err != nil {
		log.Printf("[poller] finalize plan run %s: %v", job.RunID, err)
		return
	}
	_ = p.notifier.NotifyPlanReady(ctx, event)
}

func (p *Poller) finalizeImplementationSuccess(job Job, run *codegenapi.AgentRun) {
	ctx := context.Background()

	logs, err := p.api.GetAgentRunLogs(ctx, job.OrgID, job.RunID)
	if err != nil {
		log.Printf("[poller] fetch logs for implementation run %s: %v", job.RunID, err)
	}
	prURL := codegenapi.ExtractPRURL(run.Result, logs)
	if prURL == "" {
		p.finalizeFailure(job, apperr.ExternalJob("agent run %s completed but created no pull request", job.RunID))
		return
	}

	var event notify.ImplementationCompletedEvent
	err = p.store.Update(ctx, func(c *store.Collections) error {
		req, plan, err := p.targets(c, job)
		if err != nil {
			return err
		}
		nextImpl, err := lifecycle.NextImplementationStatus(plan.ImplementationStatus, lifecycle.EventImplementationSucceeded)
		if err != nil {
			return err
		}
		nextReq, err := lifecycle.NextRequirementStatus(req.Status, lifecycle.EventImplementationSucceeded)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		plan.ImplementationStatus = nextImpl
		plan.PRURL = prURL
		plan.UpdatedAt = now
		req.Status = nextReq
		req.UpdatedAt = now
		event = notify.ImplementationCompletedEvent{
			ProjectID:       job.ProjectID,
			RequirementID:   req.ID,
			RequirementText: req.Text,
			PlanID:          plan.ID,
			PRURL:           prURL,
		}
		return nil
	})
	if err != nil {
		log.Printf("[poller] finalize implementation run %s: %v", job.RunID, err)
		return
	}
	_ = p.notifier.NotifyImplementationCompleted(ctx, event)
}

// finalizeFailure applies the failure transition for the job kind. Remote
// failures and exhausted budgets both land here; by the time a terminal local
// state is recorded the remote job is fire-and-forget.
func (p *Poller) finalizeFailure(job Job, cause error) {
	ctx := context.Background()
	log.Printf("[poller] %s run %s failed: %v", job.Kind, job.RunID, cause)

	if job.Kind == JobImplementation {
		var event notify.ImplementationFailedEvent
		err := p.store.Update(ctx, func(c *store.Collections) error {
			req, plan, err := p.targets(c, job)
			if err != nil {
				return err
			}
			nextImpl, err := lifecycle.NextImplementationStatus(plan.ImplementationStatus, lifecycle.EventImplementationFailed)
			if err != nil {
				return err
			}
			nextReq, err := lifecycle.NextRequirementStatus(req.Status, lifecycle.EventImplementationFailed)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			plan.ImplementationStatus = nextImpl
			plan.UpdatedAt = now
			req.Status = nextReq
			req.UpdatedAt = now
			event = notify.ImplementationFailedEvent{
				ProjectID:       job.ProjectID,
				RequirementID:   req.ID,
				RequirementText: req.Text,
				PlanID:          plan.ID,
				Reason:          cause.Error(),
			}
			return nil
		})
		if err != nil {
			log.Printf("[poller] record implementation failure for run %s: %v", job.RunID, err)
			return
		}
		_ = p.notifier.NotifyImplementationFailed(ctx, event)
		return
	}

	var event notify.PlanFailedEvent
	err := p.store.Update(ctx, func(c *store.Collections) error {
		req, plan, err := p.targets(c, job)
		if err != nil {
			return err
		}
		next, err := lifecycle.NextRequirementStatus(req.Status, lifecycle.EventPlanFailed)
		if err != nil {
			return err
		}
		// A failed generation leaves nothing worth keeping; drop the empty
		// plan row so the requirement can be planned again.
		c.RemovePlan(plan.ID)
		req.Status = next
		req.UpdatedAt = time.Now().UTC()
		event = notify.PlanFailedEvent{
			ProjectID:       job.ProjectID,
			RequirementID:   req.ID,
			RequirementText: req.Text,
			Reason:          cause.Error(),
		}
		return nil
	})
	if err != nil {
		log.Printf("[poller] record plan failure for run %s: %v", job.RunID, err)
		return
	}
	_ = p.notifier.NotifyPlanFailed(ctx, event)
}

// targets resolves the job's entities. A parent deleted mid-flight makes the
// result discardable, not an error condition worth surfacing.
func (p *Poller) targets(c *store.Collections, job Job) (*model.Requirement, *model.Plan, error) {
	if c.Project(job.ProjectID) == nil {
		return nil, nil, apperr.NotFound("project %s deleted while run %s was in flight", job.ProjectID, job.RunID)
	}
	req := c.Requirement(job.RequirementID)
	if req == nil {
		return nil, nil, apperr.NotFound("requirement %s deleted while run %s was in flight", job.RequirementID, job.RunID)
	}
	plan := c.Plan(job.PlanID)
	if plan == nil {
		return nil, nil, apperr.NotFound("plan %s deleted while run %s was in flight", job.PlanID, job.RunID)
	}
	return req, plan, nil
}
