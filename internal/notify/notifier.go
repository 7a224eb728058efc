package notify

import (
	"context"
	"log"

	"github.com/planMaster/backend/internal/model"
)

// Notifier records terminal workflow outcomes so they stay discoverable even
// if nobody was watching when the job finished.
type Notifier interface {
	NotifyPlanReady(ctx context.Context, e PlanReadyEvent) error
	NotifyPlanFailed(ctx context.Context, e PlanFailedEvent) error
	NotifyImplementationStarted(ctx context.Context, e ImplementationStartedEvent) error
	NotifyImplementationCompleted(ctx context.Context, e ImplementationCompletedEvent) error
	NotifyImplementationFailed(ctx context.Context, e ImplementationFailedEvent) error
}

// NoopNotifier is used when notifications are disabled.
type NoopNotifier struct{}

func (NoopNotifier) NotifyPlanReady(context.Context, PlanReadyEvent) error     { return nil }
func (NoopNotifier) NotifyPlanFailed(context.Context, PlanFailedEvent) error   { return nil }
func (NoopNotifier) NotifyImplementationStarted(context.Context, ImplementationStartedEvent) error {
	return nil
}
func (NoopNotifier) NotifyImplementationCompleted(context.Context, ImplementationCompletedEvent) error {
	return nil
}
func (NoopNotifier) NotifyImplementationFailed(context.Context, ImplementationFailedEvent) error {
	return nil
}

// Input is an appendable notification record.
type Input struct {
	Type    model.NotificationType
	Title   string
	Message string
	Data    map[string]interface{}
}

// Appender persists notification records. Implemented by the notification
// service; declared here so the notifier does not depend on it.
type Appender interface {
	Append(ctx context.Context, projectID string, in Input) error
}

// StoreNotifier turns workflow events into persisted in-app notifications.
type StoreNotifier struct {
	appender Appender
}

func NewStoreNotifier(appender Appender) *StoreNotifier {
	return &StoreNotifier{appender: appender}
}

func (n *StoreNotifier) NotifyPlanReady(ctx context.Context, e PlanReadyEvent) error {
	return n.append(ctx, e.ProjectID, Input{
		Type:    model.NotificationPlanCreated,
		Title:   "Plan ready",
		Message: "Implementation plan generated for: " + truncate(e.RequirementText, 120),
		Data:    map[string]interface{}{"requirement_id": e.RequirementID, "plan_id": e.PlanID},
	})
}

func (n *StoreNotifier) NotifyPlanFailed(ctx context.Context, e PlanFailedEvent) error {
	return n.append(ctx, e.ProjectID, Input{
		Type:    model.NotificationPlanFailed,
		Title:   "Plan generation failed",
		Message: e.Reason,
		Data:    map[string]interface{}{"requirement_id": e.RequirementID},
	})
}

func (n *StoreNotifier) NotifyImplementationStarted(ctx context.Context, e ImplementationStartedEvent) error {
	return n.append(ctx, e.ProjectID, Input{
		Type:    model.NotificationImplementationStarted,
		Title:   "Implementation started",
		Message: "Implementation started for: " + truncate(e.RequirementText, 120),
		Data:    map[string]interface{}{"requirement_id": e.RequirementID, "plan_id": e.PlanID, "agent_run_id": e.AgentRunID},
	})
}

func (n *StoreNotifier) NotifyImplementationCompleted(ctx context.Context, e ImplementationCompletedEvent) error {
	return n.append(ctx, e.ProjectID, Input{
		Type:    model.NotificationImplementationCompleted,
		Title:   "Pull request created",
		Message: "Implementation completed for: " + truncate(e.RequirementText, 120),
		Data:    map[string]interface{}{"requirement_id": e.RequirementID, "plan_id": e.PlanID, "pr_url": e.PRURL},
	})
}

func (n *StoreNotifier) NotifyImplementationFailed(ctx context.Context, e ImplementationFailedEvent) error {
	return n.append(ctx, e.ProjectID, Input{
		Type:    model.NotificationImplementationFailed,
		Title:   "Implementation failed",
		Message: e.Reason,
		Data:    map[string]interface{}{"requirement_id": e.RequirementID, "plan_id": e.PlanID},
	})
}

func (n *StoreNotifier) append(ctx context.Context, projectID string, in Input) error {
	if err := n.appender.Append(ctx, projectID, in); err != nil {
		log.Printf("[notify] append %s notification for project %s failed: %v", in.Type, projectID, err)
		return err
	}
	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

var _ Notifier = (*StoreNotifier)(nil)
