package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptsClient_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scripts", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var req runforge.ScriptCreateRequest

		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "nightly-report", req.Name)
		assert.Equal(t, "python", req.Language)

		resource := runforge.ScriptResource{
			Resource: runforge.Resource{GUID: "script-guid"},
			Name:     req.Name,
			Language: req.Language,
			Content:  req.Content,
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resource)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	script, err := client.Scripts().Create(context.Background(), &runforge.ScriptCreateRequest{
		Name:     "nightly-report",
		Language: "python",
		Content:  "print('hello')",
	})

	require.NoError(t, err)
	assert.Equal(t, "script-guid", script.GUID)
	assert.Equal(t, "nightly-report", script.Name)
}

func TestScriptsClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scripts/script-guid", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		resource := runforge.ScriptResource{
			Resource: runforge.Resource{GUID: "script-guid"},
			Name:     "nightly-report",
			Language: "python",
		}

		_ = json.NewEncoder(w).Encode(resource)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	script, err := client.Scripts().Get(context.Background(), "script-guid")
	require.NoError(t, err)
	assert.Equal(t, "script-guid", script.GUID)
	assert.Equal(t, "python", script.Language)
}

func TestScriptsClient_ListBindsScripts(t *testing.T) {
	ran := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/scripts":
			_, _ = w.Write([]byte(`{
				"results": [
					{"guid": "script-1", "name": "first", "language": "python"},
					{"guid": "script-2", "name": "second", "language": "bash"}
				],
				"total_count": 2,
				"current_page": 1
			}`))
		case "/v1/scripts/script-1/actions/run":
			ran = true

			_ = json.NewEncoder(w).Encode(runforge.Execution{
				Resource:   runforge.Resource{GUID: "exec-guid"},
				ScriptGUID: "script-1",
				State:      "pending",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	page, err := client.Scripts().List(context.Background(), nil)
	require.NoError(t, err)

	scripts := page.Items()
	require.Len(t, scripts, 2)
	assert.Equal(t, "first", scripts[0].Name)
	assert.Equal(t, "second", scripts[1].Name)

	// Listed scripts are bound to the client and can run directly
	execution, err := scripts[0].Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "exec-guid", execution.GUID)
}

func TestScriptsClient_Update(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scripts/script-guid", r.URL.Path)
		assert.Equal(t, "PATCH", r.Method)

		var req runforge.ScriptUpdateRequest

		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "print('updated')", *req.Content)

		resource := runforge.ScriptResource{
			Resource: runforge.Resource{GUID: "script-guid"},
			Name:     "nightly-report",
			Content:  *req.Content,
		}

		_ = json.NewEncoder(w).Encode(resource)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	content := "print('updated')"
	script, err := client.Scripts().Update(context.Background(), "script-guid", &runforge.ScriptUpdateRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "print('updated')", script.Content)
}

func TestScriptsClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scripts/script-guid", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	err = client.Scripts().Delete(context.Background(), "script-guid")
	require.NoError(t, err)
}

func TestScriptsClient_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scripts/script-guid/actions/run", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var req runforge.RunRequest

		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.JSONEq(t, `{"rows": 10}`, string(req.Input))

		execution := runforge.Execution{
			Resource:    runforge.Resource{GUID: "exec-guid"},
			ScriptGUID:  "script-guid",
			State:       "pending",
			TriggeredBy: "manual",
			Address:     "/v1/executions/exec-guid/result",
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(execution)
	}))
	defer server.Close()

	client, err := New(context.Background(), &runforge.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	execution, err := client.Scripts().Run(context.Background(), "script-guid", &runforge.RunRequest{
		Input: json.RawMessage(`{"rows": 10}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "exec-guid", execution.GUID)
	assert.Equal(t, "manual", execution.TriggeredBy)
	assert.Equal(t, "/v1/executions/exec-guid/result", execution.Address)
}
