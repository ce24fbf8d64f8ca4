package runforge

import (
	"context"
	"encoding/json"
	"iter"
	"time"
)

// AgentsClient manages agents.
type AgentsClient interface {
	Create(ctx context.Context, request *AgentCreateRequest) (*Agent, error)
	Get(ctx context.Context, guid string) (*Agent, error)
	List(ctx context.Context, params *QueryParams) (*Page[Agent, Agent], error)
	Update(ctx context.Context, guid string, request *AgentUpdateRequest) (*Agent, error)
	Delete(ctx context.Context, guid string) error
	Ping(ctx context.Context, guid string) (*Agent, error)
}

// ScriptsClient manages scripts.
//
// List attaches a transform so every page yields *Script values bound to the
// client; the binding survives page turns, so a full traversal can call Run
// on any item it yields.
type ScriptsClient interface {
	Create(ctx context.Context, request *ScriptCreateRequest) (*Script, error)
	Get(ctx context.Context, guid string) (*Script, error)
	List(ctx context.Context, params *QueryParams) (*Page[ScriptResource, *Script], error)
	Update(ctx context.Context, guid string, request *ScriptUpdateRequest) (*Script, error)
	Delete(ctx context.Context, guid string) error
	Run(ctx context.Context, guid string, request *RunRequest) (*Execution, error)
}

// ExecutionsClient manages executions and their result/log delivery.
type ExecutionsClient interface {
	Get(ctx context.Context, guid string) (*Execution, error)
	List(ctx context.Context, params *QueryParams) (*CursorPage[Execution, Execution], error)
	ListForScript(ctx context.Context, scriptGUID string, params *QueryParams) (*CursorPage[Execution, Execution], error)
	Cancel(ctx context.Context, guid string) (*Execution, error)

	// Result waits on the execution's address until the platform delivers
	// the final result as one JSON document.
	Result(ctx context.Context, execution *Execution, opts *StreamOptions) (json.RawMessage, error)

	// Logs streams decoded log lines from the execution's stream address
	// until the stream closes or the consumer breaks out.
	Logs(ctx context.Context, execution *Execution, opts *StreamOptions) iter.Seq2[LogLine, error]
}

// SchedulesClient manages schedules.
type SchedulesClient interface {
	Create(ctx context.Context, request *ScheduleCreateRequest) (*Schedule, error)
	Get(ctx context.Context, guid string) (*Schedule, error)
	List(ctx context.Context, params *QueryParams) (*Page[Schedule, Schedule], error)
	Update(ctx context.Context, guid string, request *ScheduleUpdateRequest) (*Schedule, error)
	Delete(ctx context.Context, guid string) error
	Enable(ctx context.Context, guid string) (*Schedule, error)
	Disable(ctx context.Context, guid string) (*Schedule, error)
}

// WebhooksClient manages webhooks.
type WebhooksClient interface {
	Create(ctx context.Context, request *WebhookCreateRequest) (*Webhook, error)
	Get(ctx context.Context, guid string) (*Webhook, error)
	List(ctx context.Context, params *QueryParams) (*Page[Webhook, Webhook], error)
	Update(ctx context.Context, guid string, request *WebhookUpdateRequest) (*Webhook, error)
	Delete(ctx context.Context, guid string) error
	RotateSecret(ctx context.Context, guid string) (*Webhook, error)
}

// InfoClient provides access to platform information endpoints.
type InfoClient interface {
	GetInfo(ctx context.Context) (*Info, error)
}

// Client is the full Runforge API surface.
type Client interface {
	Agents() AgentsClient
	Scripts() ScriptsClient
	Executions() ExecutionsClient
	Schedules() SchedulesClient
	Webhooks() WebhooksClient
	InfoClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a runforge.Client.
//
// # Authentication precedence
//
//  1. AccessToken: if set, used directly as a static Bearer token.
//  2. APIKey: sent as a Bearer token; if RefreshFunc is also set, the token
//     manager calls it to mint short-lived tokens from the key.
//  3. No credentials: requests are sent without authentication.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Retry behavior for the HTTP transport can be tuned via
// RetryMax/RetryWaitMin/RetryWaitMax; the pagination and streaming layers
// never retry on their own. StreamTimeout is the idle timeout applied to
// duplex connections opened by Result/Logs.
type Config struct {
	// APIEndpoint: base URL for the Runforge API (e.g.,
	// "https://api.runforge.example"). forgeclient.New normalizes this value
	// by trimming a trailing slash and adding "https://" if no scheme is
	// present.
	APIEndpoint string

	// APIKey: long-lived key for the platform.
	APIKey string
	// AccessToken: if set, used directly as a Bearer token.
	AccessToken string
	// RefreshFunc: optional hook that exchanges the API key for a
	// short-lived token. Called by the token manager when the current token
	// expires.
	RefreshFunc func(ctx context.Context, apiKey string) (token string, expiresAt time.Time, err error)

	// HTTPTimeout: optional default HTTP timeout where supported.
	HTTPTimeout time.Duration
	// StreamTimeout: idle timeout for duplex connections. Zero means the
	// package default of ten minutes.
	StreamTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (>=500,
	// 429, and connection errors). If 0, a sensible default is used.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug: enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Cache: optional response cache configuration for GET requests.
	Cache *CacheConfig
	// Interceptors: optional chain run around every HTTP request (logging,
	// metrics, rate limiting, circuit breaking).
	Interceptors *InterceptorChain
	// SkipTLSVerify: if true, TLS verification is skipped, and only when
	// FORGE_DEV_MODE is set. Intended for local development.
	SkipTLSVerify bool
}
