// Package client provides the concrete implementation of runforge.Client.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/runforge-io/runforge-client/internal/auth"
	"github.com/runforge-io/runforge-client/internal/http"
	"github.com/runforge-io/runforge-client/internal/ws"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// Client implements runforge.Client.
type Client struct {
	httpClient *http.Client
	dialer     runforge.StreamDialer

	agents     *AgentsClient
	scripts    *ScriptsClient
	executions *ExecutionsClient
	schedules  *SchedulesClient
	webhooks   *WebhooksClient
}

// New creates a client from configuration. The endpoint must already be
// normalized (see forgeclient.New).
func New(ctx context.Context, config *runforge.Config) (*Client, error) {
	tokenManager := buildTokenManager(config)

	opts := []http.Option{}

	if config.Logger != nil {
		opts = append(opts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, http.WithDebug(true))
	}

	if config.RetryMax > 0 {
		opts = append(opts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.UserAgent != "" {
		opts = append(opts, http.WithUserAgent(config.UserAgent))
	}

	if config.Cache != nil && config.Cache.Type != runforge.CacheTypeNone {
		cache, err := runforge.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("building response cache: %w", err)
		}

		opts = append(opts, http.WithCache(runforge.NewCacheManager(cache, config.Cache.Options)))
	}

	if config.Interceptors != nil {
		opts = append(opts, http.WithInterceptors(config.Interceptors))
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, opts...)

	dialer := ws.NewDialer(ws.WebSocketBaseURL(config.APIEndpoint), headerSource(tokenManager))

	client := &Client{
		httpClient: httpClient,
		dialer:     dialer,
	}

	client.initializeResourceClients(config)

	return client, nil
}

// buildTokenManager selects a token manager from the configured credentials.
// Nil means unauthenticated requests.
func buildTokenManager(config *runforge.Config) auth.TokenManager {
	switch {
	case config.AccessToken != "":
		return auth.NewStaticTokenManager(config.AccessToken)
	case config.APIKey != "":
		return auth.NewKeyTokenManager(config.APIKey, auth.RefreshFunc(config.RefreshFunc))
	default:
		return nil
	}
}

// headerSource adapts a token manager into the handshake-time header
// producer used by the websocket dialer.
func headerSource(tokenManager auth.TokenManager) ws.HeaderSource {
	if tokenManager == nil {
		return nil
	}

	return func(ctx context.Context) (nethttp.Header, error) {
		token, err := tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting auth token: %w", err)
		}

		header := nethttp.Header{}
		if token != "" {
			header.Set("Authorization", "Bearer "+token)
		}

		return header, nil
	}
}

// initializeResourceClients wires the per-resource clients.
func (c *Client) initializeResourceClients(config *runforge.Config) {
	c.agents = NewAgentsClient(c.httpClient)
	c.scripts = NewScriptsClient(c.httpClient)
	c.executions = NewExecutionsClient(c.httpClient, c.dialer, config.StreamTimeout)
	c.schedules = NewSchedulesClient(c.httpClient)
	c.webhooks = NewWebhooksClient(c.httpClient)
}

// Agents implements runforge.Client.Agents.
func (c *Client) Agents() runforge.AgentsClient {
	return c.agents
}

// Scripts implements runforge.Client.Scripts.
func (c *Client) Scripts() runforge.ScriptsClient {
	return c.scripts
}

// Executions implements runforge.Client.Executions.
func (c *Client) Executions() runforge.ExecutionsClient {
	return c.executions
}

// Schedules implements runforge.Client.Schedules.
func (c *Client) Schedules() runforge.SchedulesClient {
	return c.schedules
}

// Webhooks implements runforge.Client.Webhooks.
func (c *Client) Webhooks() runforge.WebhooksClient {
	return c.webhooks
}

// GetInfo implements runforge.InfoClient.GetInfo.
func (c *Client) GetInfo(ctx context.Context) (*runforge.Info, error) {
	resp, err := c.httpClient.Get(ctx, "/v1/info", nil)
	if err != nil {
		return nil, fmt.Errorf("getting platform info: %w", err)
	}

	var info runforge.Info

	err = json.Unmarshal(resp.Body, &info)
	if err != nil {
		return nil, fmt.Errorf("parsing info response: %w", err)
	}

	return &info, nil
}
