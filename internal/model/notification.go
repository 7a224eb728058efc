package model

import "time"

type NotificationType string

const (
	NotificationPlanCreated             NotificationType = "plan_created"
	NotificationPlanFailed              NotificationType = "plan_failed"
	NotificationPRCreated               NotificationType = "pr_created"
	NotificationPRUpdated               NotificationType = "pr_updated"
	NotificationPRMerged                NotificationType = "pr_merged"
	NotificationPRClosed                NotificationType = "pr_closed"
	NotificationBranchCreated           NotificationType = "branch_created"
	NotificationBranchUpdated           NotificationType = "branch_updated"
	NotificationImplementationStarted   NotificationType = "implementation_started"
	NotificationImplementationCompleted NotificationType = "implementation_completed"
	NotificationImplementationFailed    NotificationType = "implementation_failed"
)

type Notification struct {
	ID        string                 `json:"id"`
	ProjectID string                 `json:"project_id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}
