// Package codegenapi is a thin client for the Codegen agent-run API. The
// remote service exposes no push channel; callers create a run and poll it.
package codegenapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.codegen.com/v1"

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Run statuses reported by the service. Anything that is not completed or
// failed is treated as still pending.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type AgentRun struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
	Result string      `json:"result,omitempty"`
	WebURL string      `json:"web_url,omitempty"`
}

// RunID returns the run's identifier as a string regardless of whether the
// service sent it as a JSON number or string.
func (r *AgentRun) RunID() string { return r.ID.String() }

// Terminal reports whether the run has reached a terminal status.
func (r *AgentRun) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// CreateAgentRun starts a new agent run for the organization.
func (c *Client) CreateAgentRun(ctx context.Context, orgID, prompt string) (*AgentRun, error) {
	var run AgentRun
	path := fmt.Sprintf("/organizations/%s/agent/run", orgID)
	err := c.do(ctx, http.MethodPost, path, map[string]interface{}{
		"prompt": prompt,
		"images": []string{},
	}, &run)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetAgentRun fetches the current status of an agent run.
func (c *Client) GetAgentRun(ctx context.Context, orgID, runID string) (*AgentRun, error) {
	var run AgentRun
	path := fmt.Sprintf("/organizations/%s/agent/run/%s", orgID, runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

type logsResponse struct {
	Logs []LogEntry `json:"logs"`
}

// LogEntry tolerates both the plain-string and the {"message": ...} log item
// shapes the service has been seen emitting.
type LogEntry string

func (l *LogEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = LogEntry(s)
		return nil
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Message != "" {
		*l = LogEntry(obj.Message)
		return nil
	}
	*l = LogEntry(data)
	return nil
}

// GetAgentRunLogs fetches the run's log lines.
func (c *Client) GetAgentRunLogs(ctx context.Context, orgID, runID string) ([]string, error) {
	var resp logsResponse
	path := fmt.Sprintf("/organizations/%s/agent/run/%s/logs", orgID, runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	lines := make([]string, len(resp.Logs))
	for i, l := range resp.Logs {
		lines[i] = string(l)
	}
	return lines, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, truncate(string(respBytes), 200))
	}
	if out != nil {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
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
