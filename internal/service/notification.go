package service

import (
	"context"
	"time"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
	"github.com/planMaster/backend/internal/notify"
	"github.com/planMaster/backend/internal/store"
)

// NotificationService is the append-only notification log with read tracking.
type NotificationService struct {
	store *store.Store
}

func NewNotificationService(st *store.Store) *NotificationService {
	return &NotificationService{store: st}
}

// Append records a notification for the project. No deduplication: repeated
// terminal events append repeated notifications.
func (s *NotificationService) Append(ctx context.Context, projectID string, in notify.Input) error {
	return s.store.Update(ctx, func(c *store.Collections) error {
		if c.Project(projectID) == nil {
			return apperr.NotFound("project %s not found", projectID)
		}
		c.Notifications = append(c.Notifications, model.Notification{
			ID:        store.GenerateID(),
			ProjectID: projectID,
			Type:      in.Type,
			Title:     in.Title,
			Message:   in.Message,
			Data:      in.Data,
			Read:      false,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

// List returns the project's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, projectID string) ([]model.Notification, error) {
	var out []model.Notification
	err := s.store.View(ctx, func(c *store.Collections) error {
		if c.Project(projectID) == nil {
			return apperr.NotFound("project %s not found", projectID)
		}
		for _, n := range c.Notifications {
			if n.ProjectID == projectID {
				out = append(out, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Newest first; the slice is append-ordered on disk.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// UnreadCount counts the project's unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, projectID string) (int, error) {
	count := 0
	err := s.store.View(ctx, func(c *store.Collections) error {
		for _, n := range c.Notifications {
			if n.ProjectID == projectID && !n.Read {
				count++
			}
		}
		return nil
	})
	return count, err
}

// MarkAsRead flips one notification to read. Unknown IDs are a no-op, not an
// error, so the operation is idempotent.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(c *store.Collections) error {
		if n := c.Notification(id); n != nil {
			n.Read = true
		}
		return nil
	})
}

var _ notify.Appender = (*NotificationService)(nil)
