package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/codegen"
)

// AgentRunHandler proxies read access to the remote agent-run service so the
// frontend can surface run status and logs without holding the API token.
type AgentRunHandler struct {
	api        codegen.AgentAPI
	defaultOrg string
}

func NewAgentRunHandler(api codegen.AgentAPI, defaultOrg string) *AgentRunHandler {
	return &AgentRunHandler{api: api, defaultOrg: defaultOrg}
}

func (h *AgentRunHandler) orgID(c *gin.Context) (string, bool) {
	org := c.Query("organization_id")
	if org == "" {
		org = h.defaultOrg
	}
	if org == "" {
		BadRequest(c, apperr.CodeValidation, "organization_id is required")
		return "", false
	}
	return org, true
}

// GET /agent/runs/:id
func (h *AgentRunHandler) GetRun(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	run, err := h.api.GetAgentRun(c.Request.Context(), org, c.Param("id"))
	if err != nil {
		Fail(c, apperr.ExternalJob("fetch agent run: %v", err))
		return
	}
	Success(c, run)
}

// GET /agent/runs/:id/logs
func (h *AgentRunHandler) GetLogs(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	logs, err := h.api.GetAgentRunLogs(c.Request.Context(), org, c.Param("id"))
	if err != nil {
		Fail(c, apperr.ExternalJob("fetch agent run logs: %v", err))
		return
	}
	Success(c, gin.H{"logs": logs})
}
