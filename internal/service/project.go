package service

import (
	"context"
	"strings"
	"time"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
	"github.com/planMaster/backend/internal/store"
)

// JobCanceller cancels in-flight poll chains for a project. Implemented by
// the codegen poller; injected so project deletion can stop pollers before
// their finalizers write back under a deleted parent.
type JobCanceller interface {
	CancelProject(projectID string)
}

type ProjectService struct {
	store     *store.Store
	canceller JobCanceller
}

func NewProjectService(st *store.Store) *ProjectService {
	return &ProjectService{store: st}
}

// SetJobCanceller wires the poller in after construction; the poller itself
// depends on the store, so this breaks the startup ordering knot.
func (s *ProjectService) SetJobCanceller(c JobCanceller) {
	s.canceller = c
}

func (s *ProjectService) Create(ctx context.Context, name, description string, repo model.Repository) (*model.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("project name must not be empty")
	}
	if strings.TrimSpace(repo.FullName) == "" {
		return nil, apperr.Validation("project repository full_name must not be empty")
	}

	now := time.Now().UTC()
	project := model.Project{
		ID:          store.GenerateID(),
		Name:        name,
		Description: description,
		Repository:  repo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.store.Update(ctx, func(c *store.Collections) error {
		c.Projects = append(c.Projects, project)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns the materialized project view.
func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	return s.store.Projects(ctx)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	view, err := s.store.Projects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range view {
		if view[i].ID == id {
			return &view[i], nil
		}
	}
	return nil, apperr.NotFound("project %s not found", id)
}

// Delete removes the project and cascades to its requirements, plans and
// notifications. Poll chains are cancelled first so a job finishing during
// the delete discards its result instead of resurrecting rows.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if s.canceller != nil {
		s.canceller.CancelProject(id)
	}
	return s.store.Update(ctx, func(c *store.Collections) error {
		if c.Project(id) == nil {
			return apperr.NotFound("project %s not found", id)
		}
		c.RemoveProject(id)
		return nil
	})
}
