package service

import (
	"context"
	"strings"
	"time"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
	"github.com/planMaster/backend/internal/store"
)

type RequirementService struct {
	store *store.Store
}

func NewRequirementService(st *store.Store) *RequirementService {
	return &RequirementService{store: st}
}

// Add creates a draft requirement under the project.
func (s *RequirementService) Add(ctx context.Context, projectID, text string) (*model.Requirement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("requirement text must not be empty")
	}

	now := time.Now().UTC()
	req := model.Requirement{
		ID:        store.GenerateID(),
		ProjectID: projectID,
		Text:      text,
		Status:    model.RequirementDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if c.Project(projectID) == nil {
			return apperr.NotFound("project %s not found", projectID)
		}
		c.Requirements = append(c.Requirements, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *RequirementService) Get(ctx context.Context, id string) (*model.Requirement, error) {
	var out *model.Requirement
	err := s.store.View(ctx, func(c *store.Collections) error {
		req := c.Requirement(id)
		if req == nil {
			return apperr.NotFound("requirement %s not found", id)
		}
		cp := *req
		if plan := c.PlanByRequirement(id); plan != nil {
			planCopy := *plan
			cp.Plan = &planCopy
		}
		out = &cp
		return nil
	})
	return out, err
}

// Update rewrites the requirement text. Only drafts are editable; once
// planning starts the text is what the agent was asked to plan.
func (s *RequirementService) Update(ctx context.Context, id, text string) (*model.Requirement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("requirement text must not be empty")
	}

	var out model.Requirement
	err := s.store.Update(ctx, func(c *store.Collections) error {
		req := c.Requirement(id)
		if req == nil {
			return apperr.NotFound("requirement %s not found", id)
		}
		if req.Status != model.RequirementDraft {
			return apperr.InvalidState("requirement %s is %q, only drafts can be edited", id, req.Status)
		}
		req.Text = text
		req.UpdatedAt = time.Now().UTC()
		out = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a draft requirement and its plan, if one was left behind.
func (s *RequirementService) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(c *store.Collections) error {
		req := c.Requirement(id)
		if req == nil {
			return apperr.NotFound("requirement %s not found", id)
		}
		switch req.Status {
		case model.RequirementPlanning, model.RequirementImplementing:
			return apperr.InvalidState("requirement %s has a job in flight, wait for it to finish", id)
		}
		c.RemoveRequirement(id)
		return nil
	})
}
