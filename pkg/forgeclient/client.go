// Package forgeclient provides the main entry point for creating Runforge
// API clients.
package forgeclient

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runforge-io/runforge-client/internal/client"
	"github.com/runforge-io/runforge-client/internal/constants"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// New creates a new Runforge API client.
func New(ctx context.Context, config *runforge.Config) (runforge.Client, error) {
	if config == nil {
		return nil, runforge.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, runforge.ErrAPIEndpointRequired
	}

	// Normalize API endpoint
	apiEndpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	config.APIEndpoint = apiEndpoint

	if config.SkipTLSVerify && !isDevelopmentEnvironment() {
		return nil, constants.ErrSSLOnlyInDev
	}

	forgeClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return forgeClient, nil
}

// NewWithEndpoint creates an unauthenticated client for the given endpoint.
func NewWithEndpoint(ctx context.Context, apiEndpoint string) (runforge.Client, error) {
	return New(ctx, &runforge.Config{
		APIEndpoint: apiEndpoint,
	})
}

// NewWithAPIKey creates a client authenticated with a long-lived API key.
func NewWithAPIKey(ctx context.Context, apiEndpoint, apiKey string) (runforge.Client, error) {
	return New(ctx, &runforge.Config{
		APIEndpoint: apiEndpoint,
		APIKey:      apiKey,
	})
}

// NewWithToken creates a client authenticated with an existing access token.
func NewWithToken(ctx context.Context, apiEndpoint, token string) (runforge.Client, error) {
	return New(ctx, &runforge.Config{
		APIEndpoint: apiEndpoint,
		AccessToken: token,
	})
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("FORGE_DEV_MODE")

	return devMode == "true" || devMode == "1"
}
