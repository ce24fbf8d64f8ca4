package client

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/runforge-io/runforge-client/internal/http"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// ExecutionsClient implements runforge.ExecutionsClient.
type ExecutionsClient struct {
	httpClient    *http.Client
	dialer        runforge.StreamDialer
	streamTimeout time.Duration
}

// NewExecutionsClient creates a new executions client.
func NewExecutionsClient(httpClient *http.Client, dialer runforge.StreamDialer, streamTimeout time.Duration) *ExecutionsClient {
	return &ExecutionsClient{
		httpClient:    httpClient,
		dialer:        dialer,
		streamTimeout: streamTimeout,
	}
}

// Get implements runforge.ExecutionsClient.Get.
func (c *ExecutionsClient) Get(ctx context.Context, guid string) (*runforge.Execution, error) {
	path := "/v1/executions/" + guid

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting execution: %w", err)
	}

	var execution runforge.Execution
	if err := json.Unmarshal(resp.Body, &execution); err != nil {
		return nil, fmt.Errorf("parsing execution response: %w", err)
	}

	return &execution, nil
}

// List implements runforge.ExecutionsClient.List. Executions are an
// append-only history, so the platform paginates them by cursor.
func (c *ExecutionsClient) List(ctx context.Context, params *runforge.QueryParams) (*runforge.CursorPage[runforge.Execution, runforge.Execution], error) {
	return c.listPath(ctx, "/v1/executions", params)
}

// ListForScript implements runforge.ExecutionsClient.ListForScript.
func (c *ExecutionsClient) ListForScript(ctx context.Context, scriptGUID string, params *runforge.QueryParams) (*runforge.CursorPage[runforge.Execution, runforge.Execution], error) {
	return c.listPath(ctx, "/v1/scripts/"+scriptGUID+"/executions", params)
}

func (c *ExecutionsClient) listPath(ctx context.Context, path string, params *runforge.QueryParams) (*runforge.CursorPage[runforge.Execution, runforge.Execution], error) {
	opts := &runforge.PageOptions{}
	if params != nil {
		opts.Query = params.ToValues()
	}

	body, err := c.httpClient.RequestPage(ctx, path, opts)
	if err != nil {
		return nil, fmt.Errorf("listing executions: %w", err)
	}

	page, err := runforge.NewCursorPage[runforge.Execution](c.httpClient, path, opts, body)
	if err != nil {
		return nil, fmt.Errorf("parsing executions list response: %w", err)
	}

	return page, nil
}

// Cancel implements runforge.ExecutionsClient.Cancel.
func (c *ExecutionsClient) Cancel(ctx context.Context, guid string) (*runforge.Execution, error) {
	path := "/v1/executions/" + guid + "/actions/cancel"

	resp, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("cancelling execution: %w", err)
	}

	var execution runforge.Execution
	if err := json.Unmarshal(resp.Body, &execution); err != nil {
		return nil, fmt.Errorf("parsing execution response: %w", err)
	}

	return &execution, nil
}

// Result implements runforge.ExecutionsClient.Result. It listens on the
// execution's address until the platform delivers the final result as one
// JSON document.
func (c *ExecutionsClient) Result(ctx context.Context, execution *runforge.Execution, opts *runforge.StreamOptions) (json.RawMessage, error) {
	if execution.Address == "" {
		return nil, runforge.ErrNoAddress
	}

	return runforge.Listen[json.RawMessage](ctx, c.dialer, execution.Address, c.streamOptions(opts))
}

// Logs implements runforge.ExecutionsClient.Logs. One log line per stream
// message.
func (c *ExecutionsClient) Logs(ctx context.Context, execution *runforge.Execution, opts *runforge.StreamOptions) iter.Seq2[runforge.LogLine, error] {
	if execution.StreamAddress == "" {
		return func(yield func(runforge.LogLine, error) bool) {
			yield(runforge.LogLine{}, runforge.ErrNoStreamAddress)
		}
	}

	return runforge.Stream[runforge.LogLine](ctx, c.dialer, execution.StreamAddress, c.streamOptions(opts))
}

// streamOptions applies the client-level stream timeout when the caller
// leaves opts unset.
func (c *ExecutionsClient) streamOptions(opts *runforge.StreamOptions) *runforge.StreamOptions {
	if opts != nil {
		return opts
	}

	if c.streamTimeout > 0 {
		return &runforge.StreamOptions{Timeout: c.streamTimeout}
	}

	return nil
}
