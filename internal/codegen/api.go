// Package codegen drives remote agent runs to a terminal outcome. The remote
// service only answers polls, so each run gets its own poll chain with a fixed
// interval and a bounded attempt budget.
package codegen

import (
	"context"

	"github.com/planMaster/backend/pkg/codegenapi"
)

// AgentAPI is the slice of the Codegen client the poller and services need.
// Implemented by *codegenapi.Client; faked in tests.
type AgentAPI interface {
	CreateAgentRun(ctx context.Context, orgID, prompt string) (*codegenapi.AgentRun, error)
	GetAgentRun(ctx context.Context, orgID, runID string) (*codegenapi.AgentRun, error)
	GetAgentRunLogs(ctx context.Context, orgID, runID string) ([]string, error)
}
