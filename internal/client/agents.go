package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/runforge-io/runforge-client/internal/http"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// AgentsClient implements runforge.AgentsClient.
type AgentsClient struct {
	httpClient *http.Client
}

// NewAgentsClient creates a new agents client.
func NewAgentsClient(httpClient *http.Client) *AgentsClient {
	return &AgentsClient{
		httpClient: httpClient,
	}
}

// Create implements runforge.AgentsClient.Create.
func (c *AgentsClient) Create(ctx context.Context, request *runforge.AgentCreateRequest) (*runforge.Agent, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/agents", request)
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	var agent runforge.Agent
	if err := json.Unmarshal(resp.Body, &agent); err != nil {
		return nil, fmt.Errorf("parsing agent response: %w", err)
	}

	return &agent, nil
}

// Get implements runforge.AgentsClient.Get.
func (c *AgentsClient) Get(ctx context.Context, guid string) (*runforge.Agent, error) {
	path := "/v1/agents/" + guid

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting agent: %w", err)
	}

	var agent runforge.Agent
	if err := json.Unmarshal(resp.Body, &agent); err != nil {
		return nil, fmt.Errorf("parsing agent response: %w", err)
	}

	return &agent, nil
}

// List implements runforge.AgentsClient.List. Agents use offset pagination.
func (c *AgentsClient) List(ctx context.Context, params *runforge.QueryParams) (*runforge.Page[runforge.Agent, runforge.Agent], error) {
	opts := &runforge.PageOptions{}
	if params != nil {
		opts.Query = params.ToValues()
	}

	body, err := c.httpClient.RequestPage(ctx, "/v1/agents", opts)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}

	page, err := runforge.NewPage[runforge.Agent](c.httpClient, "/v1/agents", opts, body)
	if err != nil {
		return nil, fmt.Errorf("parsing agents list response: %w", err)
	}

	return page, nil
}

// Update implements runforge.AgentsClient.Update.
func (c *AgentsClient) Update(ctx context.Context, guid string, request *runforge.AgentUpdateRequest) (*runforge.Agent, error) {
	path := "/v1/agents/" + guid

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating agent: %w", err)
	}

	var agent runforge.Agent
	if err := json.Unmarshal(resp.Body, &agent); err != nil {
		return nil, fmt.Errorf("parsing agent response: %w", err)
	}

	return &agent, nil
}

// Delete implements runforge.AgentsClient.Delete.
func (c *AgentsClient) Delete(ctx context.Context, guid string) error {
	path := "/v1/agents/" + guid

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting agent: %w", err)
	}

	return nil
}

// Ping implements runforge.AgentsClient.Ping.
func (c *AgentsClient) Ping(ctx context.Context, guid string) (*runforge.Agent, error) {
	path := "/v1/agents/" + guid + "/actions/ping"

	resp, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("pinging agent: %w", err)
	}

	var agent runforge.Agent
	if err := json.Unmarshal(resp.Body, &agent); err != nil {
		return nil, fmt.Errorf("parsing agent response: %w", err)
	}

	return &agent, nil
}
