package model

import "time"

// ImplementationStatus tracks the implementation half of a plan's lifecycle.
type ImplementationStatus string

const (
	ImplementationNotStarted ImplementationStatus = "not_started"
	ImplementationInProgress ImplementationStatus = "in_progress"
	ImplementationPRCreated  ImplementationStatus = "pr_created"
	ImplementationPRMerged   ImplementationStatus = "pr_merged"
	ImplementationFailed     ImplementationStatus = "failed"
)

type Plan struct {
	ID            string `json:"id"`
	RequirementID string `json:"requirement_id"`
	// Content is what the user sees and may edit. OriginalContent is the
	// verbatim agent output and is write-once.
	Content              string               `json:"content"`
	OriginalContent      string               `json:"original_content"`
	IsEdited             bool                 `json:"is_edited"`
	ImplementationStatus ImplementationStatus `json:"implementation_status"`
	AgentRunID           string               `json:"agent_run_id,omitempty"`
	PRURL                string               `json:"pr_url,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// RecomputeEdited rederives IsEdited from the content pair. IsEdited is never
// assigned directly anywhere else.
func (p *Plan) RecomputeEdited() {
	p.IsEdited = p.Content != p.OriginalContent
}
