package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
	"github.com/planMaster/backend/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=128"`
		Description string `json:"description"`
		Repository  struct {
			FullName      string `json:"full_name" binding:"required"`
			URL           string `json:"url"`
			DefaultBranch string `json:"default_branch"`
		} `json:"repository" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, apperr.CodeValidation, "invalid request: "+err.Error())
		return
	}

	branch := req.Repository.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	project, err := h.projectService.Create(c.Request.Context(), req.Name, req.Description, model.Repository{
		FullName:      req.Repository.FullName,
		URL:           req.Repository.URL,
		DefaultBranch: branch,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, projects)
}

// GET /projects/:id
func (h *ProjectHandler) GetDetail(c *gin.Context) {
	project, err := h.projectService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projectService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "project deleted"})
}
