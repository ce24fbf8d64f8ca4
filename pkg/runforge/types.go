package runforge

import (
	"encoding/json"
	"time"
)

// Resource represents the base structure for all Runforge API resources.
type Resource struct {
	GUID      string    `json:"guid"       yaml:"guid"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
	Links     Links     `json:"links"      yaml:"links"`
}

// Links represents resource links.
type Links map[string]Link

// Link represents a single link.
type Link struct {
	Href   string `json:"href"             yaml:"href"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
}

// Metadata represents labels and annotations.
type Metadata struct {
	Labels      map[string]string `json:"labels,omitempty"      yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Agent represents a remote worker that executes scripts.
type Agent struct {
	Resource

	Name       string    `json:"name"                   yaml:"name"`
	State      string    `json:"state"                  yaml:"state"`
	Version    string    `json:"version"                yaml:"version"`
	Tags       []string  `json:"tags,omitempty"         yaml:"tags,omitempty"`
	LastSeenAt time.Time `json:"last_seen_at,omitzero"  yaml:"last_seen_at,omitempty"`
	Metadata   *Metadata `json:"metadata,omitempty"     yaml:"metadata,omitempty"`
}

// AgentCreateRequest is the request body for creating an agent.
type AgentCreateRequest struct {
	Name     string    `json:"name"               yaml:"name"`
	Tags     []string  `json:"tags,omitempty"     yaml:"tags,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// AgentUpdateRequest is the request body for updating an agent.
type AgentUpdateRequest struct {
	Name     *string   `json:"name,omitempty"     yaml:"name,omitempty"`
	Tags     []string  `json:"tags,omitempty"     yaml:"tags,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ScriptResource is the raw, server-shaped representation of a script as it
// appears in API responses. Script is the richer client-side view built from
// it; list calls attach a transform so every page yields *Script values bound
// to the client that fetched them.
type ScriptResource struct {
	Resource

	Name      string    `json:"name"                 yaml:"name"`
	Language  string    `json:"language"             yaml:"language"`
	Content   string    `json:"content,omitempty"    yaml:"content,omitempty"`
	AgentGUID string    `json:"agent_guid,omitempty" yaml:"agent_guid,omitempty"`
	TimeoutMS int       `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"   yaml:"metadata,omitempty"`
}

// ScriptCreateRequest is the request body for creating a script.
type ScriptCreateRequest struct {
	Name      string    `json:"name"                 yaml:"name"`
	Language  string    `json:"language"             yaml:"language"`
	Content   string    `json:"content"              yaml:"content"`
	AgentGUID string    `json:"agent_guid,omitempty" yaml:"agent_guid,omitempty"`
	TimeoutMS int       `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"   yaml:"metadata,omitempty"`
}

// ScriptUpdateRequest is the request body for updating a script.
type ScriptUpdateRequest struct {
	Name      *string   `json:"name,omitempty"       yaml:"name,omitempty"`
	Content   *string   `json:"content,omitempty"    yaml:"content,omitempty"`
	AgentGUID *string   `json:"agent_guid,omitempty" yaml:"agent_guid,omitempty"`
	TimeoutMS *int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"   yaml:"metadata,omitempty"`
}

// RunRequest is the request body for triggering a script execution.
type RunRequest struct {
	Input     json.RawMessage `json:"input,omitempty"      yaml:"input,omitempty"`
	AgentGUID string          `json:"agent_guid,omitempty" yaml:"agent_guid,omitempty"`
}

// Execution represents one run of a script on an agent.
//
// Address is an opaque token naming the duplex endpoint that delivers the
// execution's final result; StreamAddress names the endpoint that streams its
// log lines live. Both are consumed by the streaming layer, not by callers
// directly.
type Execution struct {
	Resource

	ScriptGUID    string          `json:"script_guid"              yaml:"script_guid"`
	AgentGUID     string          `json:"agent_guid"               yaml:"agent_guid"`
	State         string          `json:"state"                    yaml:"state"`
	TriggeredBy   string          `json:"triggered_by"             yaml:"triggered_by"`
	Address       string          `json:"address,omitempty"        yaml:"address,omitempty"`
	StreamAddress string          `json:"stream_address,omitempty" yaml:"stream_address,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"         yaml:"result,omitempty"`
	StartedAt     time.Time       `json:"started_at,omitzero"      yaml:"started_at,omitempty"`
	FinishedAt    time.Time       `json:"finished_at,omitzero"     yaml:"finished_at,omitempty"`
}

// LogLine is one decoded line from an execution's log stream.
type LogLine struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Stream    string    `json:"stream"    yaml:"stream"`
	Message   string    `json:"message"   yaml:"message"`
}

// Schedule represents a recurring trigger for a script.
type Schedule struct {
	Resource

	ScriptGUID string    `json:"script_guid"            yaml:"script_guid"`
	Cron       string    `json:"cron"                   yaml:"cron"`
	Enabled    bool      `json:"enabled"                yaml:"enabled"`
	NextRunAt  time.Time `json:"next_run_at,omitzero"   yaml:"next_run_at,omitempty"`
	LastRunAt  time.Time `json:"last_run_at,omitzero"   yaml:"last_run_at,omitempty"`
}

// ScheduleCreateRequest is the request body for creating a schedule.
type ScheduleCreateRequest struct {
	ScriptGUID string `json:"script_guid" yaml:"script_guid"`
	Cron       string `json:"cron"        yaml:"cron"`
	Enabled    *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// ScheduleUpdateRequest is the request body for updating a schedule.
type ScheduleUpdateRequest struct {
	Cron    *string `json:"cron,omitempty"    yaml:"cron,omitempty"`
	Enabled *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Webhook represents an HTTP trigger for a script.
type Webhook struct {
	Resource

	ScriptGUID string `json:"script_guid"      yaml:"script_guid"`
	Slug       string `json:"slug"             yaml:"slug"`
	Secret     string `json:"secret,omitempty" yaml:"secret,omitempty"`
	Enabled    bool   `json:"enabled"          yaml:"enabled"`
}

// WebhookCreateRequest is the request body for creating a webhook.
type WebhookCreateRequest struct {
	ScriptGUID string `json:"script_guid"       yaml:"script_guid"`
	Slug       string `json:"slug"              yaml:"slug"`
	Enabled    *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// WebhookUpdateRequest is the request body for updating a webhook.
type WebhookUpdateRequest struct {
	Slug    *string `json:"slug,omitempty"    yaml:"slug,omitempty"`
	Enabled *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Info represents the /v1/info response.
type Info struct {
	Name        string `json:"name"        yaml:"name"`
	Build       string `json:"build"       yaml:"build"`
	Version     int    `json:"version"     yaml:"version"`
	Description string `json:"description" yaml:"description"`
	Links       Links  `json:"links"       yaml:"links"`
}
