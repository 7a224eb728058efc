package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/service"
)

type RequirementHandler struct {
	reqService *service.RequirementService
}

func NewRequirementHandler(reqService *service.RequirementService) *RequirementHandler {
	return &RequirementHandler{reqService: reqService}
}

// POST /projects/:id/requirements
func (h *RequirementHandler) Create(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, apperr.CodeValidation, "invalid request: "+err.Error())
		return
	}

	requirement, err := h.reqService.Add(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, requirement)
}

// GET /requirements/:id
func (h *RequirementHandler) GetDetail(c *gin.Context) {
	requirement, err := h.reqService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, requirement)
}

// PATCH /requirements/:id
func (h *RequirementHandler) Update(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, apperr.CodeValidation, "invalid request: "+err.Error())
		return
	}

	requirement, err := h.reqService.Update(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, requirement)
}

// DELETE /requirements/:id
func (h *RequirementHandler) Delete(c *gin.Context) {
	if err := h.reqService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "requirement deleted"})
}
