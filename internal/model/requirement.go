package model

import "time"

// RequirementStatus is the lifecycle state of a requirement. The legal
// transitions are owned by the lifecycle package; nothing else may invent one.
type RequirementStatus string

const (
	RequirementDraft        RequirementStatus = "draft"
	RequirementPlanning     RequirementStatus = "planning"
	RequirementPlanned      RequirementStatus = "planned"
	RequirementImplementing RequirementStatus = "implementing"
	RequirementCompleted    RequirementStatus = "completed"
	RequirementFailed       RequirementStatus = "failed"
)

type Requirement struct {
	ID        string            `json:"id"`
	ProjectID string            `json:"project_id"`
	Text      string            `json:"text"`
	Status    RequirementStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Filled by materialization. At most one plan exists per requirement.
	Plan *Plan `json:"plan,omitempty"`
}
