package service

import (
	"context"
	"log"
	"time"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/codegen"
	"github.com/planMaster/backend/internal/lifecycle"
	"github.com/planMaster/backend/internal/model"
	"github.com/planMaster/backend/internal/notify"
	"github.com/planMaster/backend/internal/store"
)

// PlanService owns the two asynchronous workflows: plan generation and
// implementation. Both create a remote agent run synchronously, hand it to
// the poller, and return; the poller finishes the job later.
type PlanService struct {
	store      *store.Store
	api        codegen.AgentAPI
	poller     *codegen.Poller
	notifier   notify.Notifier
	defaultOrg string
}

func NewPlanService(st *store.Store, api codegen.AgentAPI, poller *codegen.Poller, notifier notify.Notifier, defaultOrg string) *PlanService {
	return &PlanService{
		store:      st,
		api:        api,
		poller:     poller,
		notifier:   notifier,
		defaultOrg: defaultOrg,
	}
}

func (s *PlanService) orgID(orgID string) (string, error) {
	if orgID != "" {
		return orgID, nil
	}
	if s.defaultOrg != "" {
		return s.defaultOrg, nil
	}
	return "", apperr.Validation("organization_id is required")
}

// CreatePlan starts plan generation for a draft requirement. The requirement
// moves to planning and an empty plan row is created before the remote call;
// both are rolled back if the agent service refuses the run.
func (s *PlanService) CreatePlan(ctx context.Context, requirementID, orgID string) (*model.Plan, error) {
	org, err := s.orgID(orgID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	plan := model.Plan{
		ID:                   store.GenerateID(),
		RequirementID:        requirementID,
		ImplementationStatus: model.ImplementationNotStarted,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	var project model.Project
	var req model.Requirement
	err = s.store.Update(ctx, func(c *store.Collections) error {
		r := c.Requirement(requirementID)
		if r == nil {
			return apperr.NotFound("requirement %s not found", requirementID)
		}
		p := c.Project(r.ProjectID)
		if p == nil {
			return apperr.NotFound("project %s not found for requirement %s", r.ProjectID, requirementID)
		}
		if err := lifecycle.CanCreatePlan(r, c.PlanByRequirement(requirementID)); err != nil {
			return err
		}
		next, err := lifecycle.NextRequirementStatus(r.Status, lifecycle.EventPlanRequested)
		if err != nil {
			return err
		}
		r.Status = next
		r.UpdatedAt = now
		c.Plans = append(c.Plans, plan)
		project = *p
		req = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	run, err := s.api.CreateAgentRun(ctx, org, codegen.BuildPlanPrompt(&project, &req))
	if err != nil {
		s.revertPlanRequest(ctx, requirementID, plan.ID)
		return nil, &apperr.Error{Code: apperr.CodeExternalJob, Message: "create plan agent run", Err: err}
	}

	plan.AgentRunID = run.RunID()
	err = s.store.Update(ctx, func(c *store.Collections) error {
		p := c.Plan(plan.ID)
		if p == nil {
			return apperr.Conflict("plan %s deleted while its agent run was being created", plan.ID)
		}
		p.AgentRunID = run.RunID()
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.poller.Watch(codegen.Job{
		Kind:          codegen.JobPlan,
		OrgID:         org,
		RunID:         run.RunID(),
		ProjectID:     project.ID,
		RequirementID: requirementID,
		PlanID:        plan.ID,
	})
	return &plan, nil
}

// revertPlanRequest undoes the planning transition after a failed remote
// create, leaving the requirement as it was before CreatePlan.
func (s *PlanService) revertPlanRequest(ctx context.Context, requirementID, planID string) {
	err := s.store.Update(ctx, func(c *store.Collections) error {
		c.RemovePlan(planID)
		if r := c.Requirement(requirementID); r != nil && r.Status == model.RequirementPlanning {
			r.Status = model.RequirementDraft
			r.UpdatedAt = time.Now().UTC()
		}
		return nil
	})
	if err != nil {
		log.Printf("[plan] revert plan request for requirement %s: %v", requirementID, err)
	}
}

// UpdatePlan rewrites the editable plan content. The original agent output is
// untouched and is_edited is rederived, never set.
func (s *PlanService) UpdatePlan(ctx context.Context, planID, content string) (*model.Plan, error) {
	if content == "" {
		return nil, apperr.Validation("plan content must not be empty")
	}

	var out model.Plan
	err := s.store.Update(ctx, func(c *store.Collections) error {
		plan := c.Plan(planID)
		if plan == nil {
			return apperr.NotFound("plan %s not found", planID)
		}
		if plan.ImplementationStatus != model.ImplementationNotStarted {
			return apperr.InvalidState("plan %s implementation is %q, content is frozen", planID, plan.ImplementationStatus)
		}
		plan.Content = content
		plan.RecomputeEdited()
		plan.UpdatedAt = time.Now().UTC()
		out = *plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByRequirement returns the requirement's plan.
func (s *PlanService) GetByRequirement(ctx context.Context, requirementID string) (*model.Plan, error) {
	var out *model.Plan
	err := s.store.View(ctx, func(c *store.Collections) error {
		if c.Requirement(requirementID) == nil {
			return apperr.NotFound("requirement %s not found", requirementID)
		}
		plan := c.PlanByRequirement(requirementID)
		if plan == nil {
			return apperr.NotFound("requirement %s has no plan", requirementID)
		}
		cp := *plan
		out = &cp
		return nil
	})
	return out, err
}

// StartImplementation kicks off the implementation run for a plan.
// clientContent, when provided, is the plan text the caller was looking at;
// it must match the persisted content so unsaved edits cannot slip through.
func (s *PlanService) StartImplementation(ctx context.Context, planID, orgID, clientContent string) error {
	org, err := s.orgID(orgID)
	if err != nil {
		return err
	}

	var project model.Project
	var req model.Requirement
	var planContent string
	err = s.store.Update(ctx, func(c *store.Collections) error {
		plan := c.Plan(planID)
		if plan == nil {
			return apperr.NotFound("plan %s not found", planID)
		}
		r := c.Requirement(plan.RequirementID)
		if r == nil {
			return apperr.NotFound("requirement %s not found for plan %s", plan.RequirementID, planID)
		}
		p := c.Project(r.ProjectID)
		if p == nil {
			return apperr.NotFound("project %s not found for requirement %s", r.ProjectID, r.ID)
		}
		if err := lifecycle.CanStartImplementation(plan, clientContent); err != nil {
			return err
		}
		nextImpl, err := lifecycle.NextImplementationStatus(plan.ImplementationStatus, lifecycle.EventImplementationStarted)
		if err != nil {
			return err
		}
		nextReq, err := lifecycle.NextRequirementStatus(r.Status, lifecycle.EventImplementationStarted)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		plan.ImplementationStatus = nextImpl
		plan.UpdatedAt = now
		r.Status = nextReq
		r.UpdatedAt = now
		project = *p
		req = *r
		planContent = plan.Content
		return nil
	})
	if err != nil {
		return err
	}

	run, err := s.api.CreateAgentRun(ctx, org, codegen.BuildImplementationPrompt(&project, planContent))
	if err != nil {
		s.revertImplementationStart(ctx, planID, req.ID)
		return &apperr.Error{Code: apperr.CodeExternalJob, Message: "create implementation agent run", Err: err}
	}

	err = s.store.Update(ctx, func(c *store.Collections) error {
		plan := c.Plan(planID)
		if plan == nil {
			return apperr.Conflict("plan %s deleted while its agent run was being created", planID)
		}
		plan.AgentRunID = run.RunID()
		plan.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.notifier.NotifyImplementationStarted(ctx, notify.ImplementationStartedEvent{
		ProjectID:       project.ID,
		RequirementID:   req.ID,
		RequirementText: req.Text,
		PlanID:          planID,
		AgentRunID:      run.RunID(),
	})

	s.poller.Watch(codegen.Job{
		Kind:          codegen.JobImplementation,
		OrgID:         org,
		RunID:         run.RunID(),
		ProjectID:     project.ID,
		RequirementID: req.ID,
		PlanID:        planID,
	})
	return nil
}

// revertImplementationStart undoes the in-progress transition after a failed
// remote create.
func (s *PlanService) revertImplementationStart(ctx context.Context, planID, requirementID string) {
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if plan := c.Plan(planID); plan != nil && plan.ImplementationStatus == model.ImplementationInProgress {
			plan.ImplementationStatus = model.ImplementationNotStarted
			plan.UpdatedAt = time.Now().UTC()
		}
		if r := c.Requirement(requirementID); r != nil && r.Status == model.RequirementImplementing {
			r.Status = model.RequirementPlanned
			r.UpdatedAt = time.Now().UTC()
		}
		return nil
	})
	if err != nil {
		log.Printf("[plan] revert implementation start for plan %s: %v", planID, err)
	}
}
