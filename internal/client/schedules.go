package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/runforge-io/runforge-client/internal/http"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// SchedulesClient implements runforge.SchedulesClient.
type SchedulesClient struct {
	httpClient *http.Client
}

// NewSchedulesClient creates a new schedules client.
func NewSchedulesClient(httpClient *http.Client) *SchedulesClient {
	return &SchedulesClient{
		httpClient: httpClient,
	}
}

// Create implements runforge.SchedulesClient.Create.
func (c *SchedulesClient) Create(ctx context.Context, request *runforge.ScheduleCreateRequest) (*runforge.Schedule, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/schedules", request)
	if err != nil {
		return nil, fmt.Errorf("creating schedule: %w", err)
	}

	return parseSchedule(resp.Body)
}

// Get implements runforge.SchedulesClient.Get.
func (c *SchedulesClient) Get(ctx context.Context, guid string) (*runforge.Schedule, error) {
	resp, err := c.httpClient.Get(ctx, "/v1/schedules/"+guid, nil)
	if err != nil {
		return nil, fmt.Errorf("getting schedule: %w", err)
	}

	return parseSchedule(resp.Body)
}

// List implements runforge.SchedulesClient.List. Schedules use offset
// pagination.
func (c *SchedulesClient) List(ctx context.Context, params *runforge.QueryParams) (*runforge.Page[runforge.Schedule, runforge.Schedule], error) {
	opts := &runforge.PageOptions{}
	if params != nil {
		opts.Query = params.ToValues()
	}

	body, err := c.httpClient.RequestPage(ctx, "/v1/schedules", opts)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}

	page, err := runforge.NewPage[runforge.Schedule](c.httpClient, "/v1/schedules", opts, body)
	if err != nil {
		return nil, fmt.Errorf("parsing schedules list response: %w", err)
	}

	return page, nil
}

// Update implements runforge.SchedulesClient.Update.
func (c *SchedulesClient) Update(ctx context.Context, guid string, request *runforge.ScheduleUpdateRequest) (*runforge.Schedule, error) {
	resp, err := c.httpClient.Patch(ctx, "/v1/schedules/"+guid, request)
	if err != nil {
		return nil, fmt.Errorf("updating schedule: %w", err)
	}

	return parseSchedule(resp.Body)
}

// Delete implements runforge.SchedulesClient.Delete.
func (c *SchedulesClient) Delete(ctx context.Context, guid string) error {
	_, err := c.httpClient.Delete(ctx, "/v1/schedules/"+guid)
	if err != nil {
		return fmt.Errorf("deleting schedule: %w", err)
	}

	return nil
}

// Enable implements runforge.SchedulesClient.Enable.
func (c *SchedulesClient) Enable(ctx context.Context, guid string) (*runforge.Schedule, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/schedules/"+guid+"/actions/enable", nil)
	if err != nil {
		return nil, fmt.Errorf("enabling schedule: %w", err)
	}

	return parseSchedule(resp.Body)
}

// Disable implements runforge.SchedulesClient.Disable.
func (c *SchedulesClient) Disable(ctx context.Context, guid string) (*runforge.Schedule, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/schedules/"+guid+"/actions/disable", nil)
	if err != nil {
		return nil, fmt.Errorf("disabling schedule: %w", err)
	}

	return parseSchedule(resp.Body)
}

func parseSchedule(body []byte) (*runforge.Schedule, error) {
	var schedule runforge.Schedule
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, fmt.Errorf("parsing schedule response: %w", err)
	}

	return &schedule, nil
}
