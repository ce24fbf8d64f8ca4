package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/runforge-io/runforge-client/internal/http"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// ScriptsClient implements runforge.ScriptsClient.
type ScriptsClient struct {
	httpClient *http.Client
}

// NewScriptsClient creates a new scripts client.
func NewScriptsClient(httpClient *http.Client) *ScriptsClient {
	return &ScriptsClient{
		httpClient: httpClient,
	}
}

// bind decorates a raw script resource with run behavior.
func (c *ScriptsClient) bind(resource runforge.ScriptResource) *runforge.Script {
	return runforge.NewScript(resource, c)
}

// Create implements runforge.ScriptsClient.Create.
func (c *ScriptsClient) Create(ctx context.Context, request *runforge.ScriptCreateRequest) (*runforge.Script, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/scripts", request)
	if err != nil {
		return nil, fmt.Errorf("creating script: %w", err)
	}

	var resource runforge.ScriptResource
	if err := json.Unmarshal(resp.Body, &resource); err != nil {
		return nil, fmt.Errorf("parsing script response: %w", err)
	}

	return c.bind(resource), nil
}

// Get implements runforge.ScriptsClient.Get.
func (c *ScriptsClient) Get(ctx context.Context, guid string) (*runforge.Script, error) {
	path := "/v1/scripts/" + guid

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting script: %w", err)
	}

	var resource runforge.ScriptResource
	if err := json.Unmarshal(resp.Body, &resource); err != nil {
		return nil, fmt.Errorf("parsing script response: %w", err)
	}

	return c.bind(resource), nil
}

// List implements runforge.ScriptsClient.List. Scripts use offset
// pagination; the bind transform is attached here once and every page fetched
// through the returned one keeps it.
func (c *ScriptsClient) List(ctx context.Context, params *runforge.QueryParams) (*runforge.Page[runforge.ScriptResource, *runforge.Script], error) {
	opts := &runforge.PageOptions{}
	if params != nil {
		opts.Query = params.ToValues()
	}

	body, err := c.httpClient.RequestPage(ctx, "/v1/scripts", opts)
	if err != nil {
		return nil, fmt.Errorf("listing scripts: %w", err)
	}

	page, err := runforge.NewPageWithTransform(c.httpClient, "/v1/scripts", opts, body, c.bind)
	if err != nil {
		return nil, fmt.Errorf("parsing scripts list response: %w", err)
	}

	return page, nil
}

// Update implements runforge.ScriptsClient.Update.
func (c *ScriptsClient) Update(ctx context.Context, guid string, request *runforge.ScriptUpdateRequest) (*runforge.Script, error) {
	path := "/v1/scripts/" + guid

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating script: %w", err)
	}

	var resource runforge.ScriptResource
	if err := json.Unmarshal(resp.Body, &resource); err != nil {
		return nil, fmt.Errorf("parsing script response: %w", err)
	}

	return c.bind(resource), nil
}

// Delete implements runforge.ScriptsClient.Delete.
func (c *ScriptsClient) Delete(ctx context.Context, guid string) error {
	path := "/v1/scripts/" + guid

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting script: %w", err)
	}

	return nil
}

// Run implements runforge.ScriptsClient.Run.
func (c *ScriptsClient) Run(ctx context.Context, guid string, request *runforge.RunRequest) (*runforge.Execution, error) {
	path := "/v1/scripts/" + guid + "/actions/run"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("running script: %w", err)
	}

	var execution runforge.Execution
	if err := json.Unmarshal(resp.Body, &execution); err != nil {
		return nil, fmt.Errorf("parsing execution response: %w", err)
	}

	return &execution, nil
}
