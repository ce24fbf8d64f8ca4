package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/runforge-io/runforge-client/internal/http"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// WebhooksClient implements runforge.WebhooksClient.
type WebhooksClient struct {
	httpClient *http.Client
}

// NewWebhooksClient creates a new webhooks client.
func NewWebhooksClient(httpClient *http.Client) *WebhooksClient {
	return &WebhooksClient{
		httpClient: httpClient,
	}
}

// Create implements runforge.WebhooksClient.Create.
func (c *WebhooksClient) Create(ctx context.Context, request *runforge.WebhookCreateRequest) (*runforge.Webhook, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/webhooks", request)
	if err != nil {
		return nil, fmt.Errorf("creating webhook: %w", err)
	}

	return parseWebhook(resp.Body)
}

// Get implements runforge.WebhooksClient.Get.
func (c *WebhooksClient) Get(ctx context.Context, guid string) (*runforge.Webhook, error) {
	resp, err := c.httpClient.Get(ctx, "/v1/webhooks/"+guid, nil)
	if err != nil {
		return nil, fmt.Errorf("getting webhook: %w", err)
	}

	return parseWebhook(resp.Body)
}

// List implements runforge.WebhooksClient.List. Webhooks use offset
// pagination.
func (c *WebhooksClient) List(ctx context.Context, params *runforge.QueryParams) (*runforge.Page[runforge.Webhook, runforge.Webhook], error) {
	opts := &runforge.PageOptions{}
	if params != nil {
		opts.Query = params.ToValues()
	}

	body, err := c.httpClient.RequestPage(ctx, "/v1/webhooks", opts)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}

	page, err := runforge.NewPage[runforge.Webhook](c.httpClient, "/v1/webhooks", opts, body)
	if err != nil {
		return nil, fmt.Errorf("parsing webhooks list response: %w", err)
	}

	return page, nil
}

// Update implements runforge.WebhooksClient.Update.
func (c *WebhooksClient) Update(ctx context.Context, guid string, request *runforge.WebhookUpdateRequest) (*runforge.Webhook, error) {
	resp, err := c.httpClient.Patch(ctx, "/v1/webhooks/"+guid, request)
	if err != nil {
		return nil, fmt.Errorf("updating webhook: %w", err)
	}

	return parseWebhook(resp.Body)
}

// Delete implements runforge.WebhooksClient.Delete.
func (c *WebhooksClient) Delete(ctx context.Context, guid string) error {
	_, err := c.httpClient.Delete(ctx, "/v1/webhooks/"+guid)
	if err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}

	return nil
}

// RotateSecret implements runforge.WebhooksClient.RotateSecret.
func (c *WebhooksClient) RotateSecret(ctx context.Context, guid string) (*runforge.Webhook, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/webhooks/"+guid+"/actions/rotate_secret", nil)
	if err != nil {
		return nil, fmt.Errorf("rotating webhook secret: %w", err)
	}

	return parseWebhook(resp.Body)
}

func parseWebhook(body []byte) (*runforge.Webhook, error) {
	var webhook runforge.Webhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		return nil, fmt.Errorf("parsing webhook response: %w", err)
	}

	return &webhook, nil
}
