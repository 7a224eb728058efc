package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/service"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// POST /requirements/:id/plan
func (h *PlanHandler) Create(c *gin.Context) {
	var req struct {
		OrganizationID string `json:"organization_id"`
	}
	// Body is optional when a default organization is configured.
	_ = c.ShouldBindJSON(&req)

	plan, err := h.planService.CreatePlan(c.Request.Context(), c.Param("id"), req.OrganizationID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, plan)
}

// GET /requirements/:id/plan
func (h *PlanHandler) GetByRequirement(c *gin.Context) {
	plan, err := h.planService.GetByRequirement(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, plan)
}

// PATCH /plans/:id
func (h *PlanHandler) Update(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, apperr.CodeValidation, "invalid request: "+err.Error())
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, plan)
}

// POST /plans/:id/implement
func (h *PlanHandler) Implement(c *gin.Context) {
	var req struct {
		OrganizationID string `json:"organization_id"`
		// Content echoes the plan text the client is looking at; a mismatch
		// with the persisted plan means unsaved edits and is rejected.
		Content string `json:"content"`
	}
	_ = c.ShouldBindJSON(&req)

	err := h.planService.StartImplementation(c.Request.Context(), c.Param("id"), req.OrganizationID, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "implementation started"})
}
