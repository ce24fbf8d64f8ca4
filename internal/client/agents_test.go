package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentsClient_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/agents", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var req runforge.AgentCreateRequest

		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "build-agent", req.Name)
		assert.Equal(t, []string{"linux", "amd64"}, req.Tags)

		agent := runforge.Agent{
			Resource: runforge.Resource{
				GUID:      "agent-guid",
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			Name:  req.Name,
			State: "offline",
			Tags:  req.Tags,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(agent)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	agent, err := client.Agents().Create(context.Background(), &runforge.AgentCreateRequest{
		Name: "build-agent",
		Tags: []string{"linux", "amd64"},
	})

	require.NoError(t, err)
	assert.Equal(t, "agent-guid", agent.GUID)
	assert.Equal(t, "build-agent", agent.Name)
	assert.Equal(t, "offline", agent.State)
}

func TestAgentsClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/agents/agent-guid", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		agent := runforge.Agent{
			Resource: runforge.Resource{GUID: "agent-guid"},
			Name:     "build-agent",
			State:    "online",
		}

		_ = json.NewEncoder(w).Encode(agent)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	agent, err := client.Agents().Get(context.Background(), "agent-guid")
	require.NoError(t, err)
	assert.Equal(t, "agent-guid", agent.GUID)
	assert.Equal(t, "build-agent", agent.Name)
	assert.Equal(t, "online", agent.State)
}

func TestAgentsClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/agents", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))

		_, _ = w.Write([]byte(`{
			"results": [
				{"guid": "agent-1", "name": "agent-1", "state": "online"},
				{"guid": "agent-2", "name": "agent-2", "state": "offline"}
			],
			"total_count": 2,
			"current_page": 1
		}`))
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	params := runforge.NewQueryParams().WithPage(1).WithPerPage(10)
	page, err := client.Agents().List(context.Background(), params)

	require.NoError(t, err)

	agents := page.Items()
	require.Len(t, agents, 2)
	assert.Equal(t, "agent-1", agents[0].Name)
	assert.Equal(t, "agent-2", agents[1].Name)
	assert.Equal(t, 2, page.TotalCount())
	assert.False(t, page.HasNextPage())
}

func TestAgentsClient_Update(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/agents/agent-guid", r.URL.Path)
		assert.Equal(t, "PATCH", r.Method)

		var req runforge.AgentUpdateRequest

		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "renamed-agent", *req.Name)

		agent := runforge.Agent{
			Resource: runforge.Resource{GUID: "agent-guid"},
			Name:     *req.Name,
		}

		_ = json.NewEncoder(w).Encode(agent)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	name := "renamed-agent"
	agent, err := client.Agents().Update(context.Background(), "agent-guid", &runforge.AgentUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed-agent", agent.Name)
}

func TestAgentsClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/agents/agent-guid", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	err = client.Agents().Delete(context.Background(), "agent-guid")
	require.NoError(t, err)
}

func TestAgentsClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/agents/agent-guid/actions/ping", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		agent := runforge.Agent{
			Resource:   runforge.Resource{GUID: "agent-guid"},
			Name:       "build-agent",
			State:      "online",
			LastSeenAt: time.Now(),
		}

		_ = json.NewEncoder(w).Encode(agent)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	agent, err := client.Agents().Ping(context.Background(), "agent-guid")
	require.NoError(t, err)
	assert.Equal(t, "online", agent.State)
	assert.False(t, agent.LastSeenAt.IsZero())
}

func TestAgentsClient_GetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": "agent_not_found", "message": "Agent not found"}}`))
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	_, err = client.Agents().Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, runforge.IsNotFound(err))
}
