// Package forgeclient provides the primary entry point for constructing a
// Runforge API client that implements the runforge.Client interface.
//
// It layers configuration, HTTP transport, authentication, and streaming
// connection setup on top of the resource interfaces and types defined in the
// runforge package. Most applications should import forgeclient to build a
// client, then use the returned runforge.Client to access resource-specific
// clients, for example Agents(), Scripts(), Executions(), etc.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/runforge-io/runforge-client/pkg/forgeclient"
//	  "github.com/runforge-io/runforge-client/pkg/runforge"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Minimal: just an API endpoint (no auth).
//	  cli, err := forgeclient.New(ctx, &runforge.Config{APIEndpoint: "https://api.runforge.example"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an access token you already have:
//	  cli, err = forgeclient.New(ctx, &runforge.Config{
//	    APIEndpoint: "https://api.runforge.example",
//	    AccessToken: "eyJhbGciOi...", // bearer token
//	  })
//
//	  // Or with a long-lived API key. The client exchanges it for access
//	  // tokens and refreshes them before expiry.
//	  cli, err = forgeclient.New(ctx, &runforge.Config{
//	    APIEndpoint: "https://api.runforge.example",
//	    APIKey:      "rfk_...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the runforge.Client interface
//	  scripts, err := cli.Scripts().List(ctx, runforge.NewQueryParams().WithPerPage(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = scripts
//	}
//
// # TLS and development mode
//
// For local development, you can set Config.SkipTLSVerify=true. This is gated
// by the environment variable FORGE_DEV_MODE to avoid accidental insecure
// usage in production environments.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithToken, and NewWithAPIKey that wrap New with the appropriate
// configuration.
package forgeclient
