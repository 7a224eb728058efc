package store

import (
	"fmt"

	"github.com/planMaster/backend/internal/model"
)

// Collections is the in-memory image of the four persisted blobs.
type Collections struct {
	Projects      []model.Project
	Requirements  []model.Requirement
	Plans         []model.Plan
	Notifications []model.Notification
}

func (c *Collections) Project(id string) *model.Project {
	for i := range c.Projects {
		if c.Projects[i].ID == id {
			return &c.Projects[i]
		}
	}
	return nil
}

func (c *Collections) Requirement(id string) *model.Requirement {
	for i := range c.Requirements {
		if c.Requirements[i].ID == id {
			return &c.Requirements[i]
		}
	}
	return nil
}

func (c *Collections) Plan(id string) *model.Plan {
	for i := range c.Plans {
		if c.Plans[i].ID == id {
			return &c.Plans[i]
		}
	}
	return nil
}

// PlanByRequirement returns the requirement's plan, if any. The one-plan-per-
// requirement invariant is enforced by the write paths, so the first match is
// the only match.
func (c *Collections) PlanByRequirement(requirementID string) *model.Plan {
	for i := range c.Plans {
		if c.Plans[i].RequirementID == requirementID {
			return &c.Plans[i]
		}
	}
	return nil
}

func (c *Collections) Notification(id string) *model.Notification {
	for i := range c.Notifications {
		if c.Notifications[i].ID == id {
			return &c.Notifications[i]
		}
	}
	return nil
}

// RemoveProject deletes the project and cascades to its requirements, their
// plans, and the project's notifications.
func (c *Collections) RemoveProject(id string) {
	doomed := make(map[string]bool)
	for _, r := range c.Requirements {
		if r.ProjectID == id {
			doomed[r.ID] = true
		}
	}

	projects := c.Projects[:0]
	for _, p := range c.Projects {
		if p.ID != id {
			projects = append(projects, p)
		}
	}
	c.Projects = projects

	requirements := c.Requirements[:0]
	for _, r := range c.Requirements {
		if r.ProjectID != id {
			requirements = append(requirements, r)
		}
	}
	c.Requirements = requirements

	plans := c.Plans[:0]
	for _, p := range c.Plans {
		if !doomed[p.RequirementID] {
			plans = append(plans, p)
		}
	}
	c.Plans = plans

	notifications := c.Notifications[:0]
	for _, n := range c.Notifications {
		if n.ProjectID != id {
			notifications = append(notifications, n)
		}
	}
	c.Notifications = notifications
}

// RemoveRequirement deletes the requirement and its plan, if any.
func (c *Collections) RemoveRequirement(id string) {
	requirements := c.Requirements[:0]
	for _, r := range c.Requirements {
		if r.ID != id {
			requirements = append(requirements, r)
		}
	}
	c.Requirements = requirements

	plans := c.Plans[:0]
	for _, p := range c.Plans {
		if p.RequirementID != id {
			plans = append(plans, p)
		}
	}
	c.Plans = plans
}

// RemovePlan deletes a single plan row.
func (c *Collections) RemovePlan(id string) {
	plans := c.Plans[:0]
	for _, p := range c.Plans {
		if p.ID != id {
			plans = append(plans, p)
		}
	}
	c.Plans = plans
}

// Materialize builds the denormalized project view: every project carries its
// requirements (each with its plan attached) and its notifications. It is a
// pure function recomputed on every call; no incremental cache.
//
// A requirement or notification pointing at a missing project is a
// data-integrity fault and fails materialization rather than being dropped.
func Materialize(c *Collections) ([]model.Project, error) {
	byProject := make(map[string]int, len(c.Projects))
	for i := range c.Projects {
		byProject[c.Projects[i].ID] = i
	}

	plansByReq := make(map[string]model.Plan, len(c.Plans))
	for _, p := range c.Plans {
		plansByReq[p.RequirementID] = p
	}

	out := make([]model.Project, len(c.Projects))
	for i, p := range c.Projects {
		p.Requirements = []model.Requirement{}
		p.Notifications = []model.Notification{}
		out[i] = p
	}

	for _, r := range c.Requirements {
		idx, ok := byProject[r.ProjectID]
		if !ok {
			return nil, fmt.Errorf("requirement %s references missing project %s", r.ID, r.ProjectID)
		}
		if plan, ok := plansByReq[r.ID]; ok {
			r.Plan = &plan
		}
		out[idx].Requirements = append(out[idx].Requirements, r)
	}

	for _, n := range c.Notifications {
		idx, ok := byProject[n.ProjectID]
		if !ok {
			return nil, fmt.Errorf("notification %s references missing project %s", n.ID, n.ProjectID)
		}
		out[idx].Notifications = append(out[idx].Notifications, n)
	}

	return out, nil
}
