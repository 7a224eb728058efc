package codegenapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAgentRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/organizations/org-1/agent/run", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "do the thing", body["prompt"])

		json.NewEncoder(w).Encode(map[string]interface{}{"id": 123, "status": "pending"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-token")
	run, err := client.CreateAgentRun(context.Background(), "org-1", "do the thing")
	require.NoError(t, err)
	assert.Equal(t, "123", run.RunID(), "numeric run ids are normalized to strings")
	assert.False(t, run.Terminal())
}

func TestGetAgentRunStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/org-1/agent/run/77", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "77", "status": "completed", "result": "done"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t")
	run, err := client.GetAgentRun(context.Background(), "org-1", "77")
	require.NoError(t, err)
	assert.True(t, run.Terminal())
	assert.Equal(t, "done", run.Result)
}

func TestGetAgentRunLogsToleratesBothShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"logs":["plain line",{"message":"structured line"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t")
	logs, err := client.GetAgentRunLogs(context.Background(), "org-1", "77")
	require.NoError(t, err)
	assert.Equal(t, []string{"plain line", "structured line"}, logs)
}

func TestErrorResponsesSurfaceStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"bad token"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t")
	_, err := client.GetAgentRun(context.Background(), "org-1", "77")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "bad token")
}
