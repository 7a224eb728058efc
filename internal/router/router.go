package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planMaster/backend/internal/handler"
	"github.com/planMaster/backend/internal/middleware"
)

type Deps struct {
	JWTSecret string // empty disables authentication

	Auth         *handler.AuthHandler
	Project      *handler.ProjectHandler
	Requirement  *handler.RequirementHandler
	Plan         *handler.PlanHandler
	Notification *handler.NotificationHandler
	AgentRun     *handler.AgentRunHandler
}

func Setup(deps Deps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	if deps.JWTSecret != "" {
		api.POST("/auth/login", deps.Auth.Login)
	}

	authed := api.Group("")
	if deps.JWTSecret != "" {
		authed.Use(middleware.JWTAuth(deps.JWTSecret))
		authed.GET("/auth/me", deps.Auth.Me)
	}

	projects := authed.Group("/projects")
	{
		projects.POST("", deps.Project.Create)
		projects.GET("", deps.Project.List)
		projects.GET("/:id", deps.Project.GetDetail)
		projects.DELETE("/:id", deps.Project.Delete)

		projects.POST("/:id/requirements", deps.Requirement.Create)

		projects.GET("/:id/notifications", deps.Notification.List)
		projects.GET("/:id/notifications/unread-count", deps.Notification.UnreadCount)
	}

	requirements := authed.Group("/requirements")
	{
		requirements.GET("/:id", deps.Requirement.GetDetail)
		requirements.PATCH("/:id", deps.Requirement.Update)
		requirements.DELETE("/:id", deps.Requirement.Delete)

		requirements.POST("/:id/plan", deps.Plan.Create)
		requirements.GET("/:id/plan", deps.Plan.GetByRequirement)
	}

	plans := authed.Group("/plans")
	{
		plans.PATCH("/:id", deps.Plan.Update)
		plans.POST("/:id/implement", deps.Plan.Implement)
	}

	authed.PUT("/notifications/:id/read", deps.Notification.MarkRead)

	agentRuns := authed.Group("/agent/runs")
	{
		agentRuns.GET("/:id", deps.AgentRun.GetRun)
		agentRuns.GET("/:id/logs", deps.AgentRun.GetLogs)
	}

	return r
}
