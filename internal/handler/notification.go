package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/planMaster/backend/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /projects/:id/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notificationService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	page, pageSize := parsePage(c)
	start := (page - 1) * pageSize
	if start > len(notifications) {
		start = len(notifications)
	}
	end := start + pageSize
	if end > len(notifications) {
		end = len(notifications)
	}
	Success(c, gin.H{
		"list":      notifications[start:end],
		"total":     len(notifications),
		"page":      page,
		"page_size": pageSize,
	})
}

// GET /projects/:id/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"count": count})
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkAsRead(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "marked as read"})
}
