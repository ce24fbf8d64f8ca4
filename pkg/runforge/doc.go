// Package runforge provides types, interfaces, and helpers for working with
// the Runforge job-execution API.
//
// # Overview
//
// The runforge package defines the domain types (Agent, Script, Execution,
// Schedule, Webhook) and the interfaces for resource-oriented clients (e.g.,
// AgentsClient, ScriptsClient). A concrete implementation of these clients is
// provided by the forgeclient package, which wires configuration, transport,
// and authentication. Most consumers should import forgeclient to construct a
// client and then interact with the resource client interfaces exposed here.
//
// Getting a client
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
//	  cli, err := forgeclient.New(ctx, &runforge.Config{
//	    APIEndpoint: "https://api.runforge.example",
//	    APIKey:      "rf_key_...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of agents
//	  agents, err := cli.Agents().List(ctx, runforge.NewQueryParams().WithPerPage(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = agents
//	}
//
// # Pagination
//
// List endpoints return a Page (offset pagination: absolute page number and
// total count) or a CursorPage (cursor pagination: opaque continuation URLs
// only). Both are immutable snapshots that know how to fetch their successor,
// and both offer a lazy traversal over the full result set:
//
//	page, err := cli.Scripts().List(ctx, nil)
//	if err != nil { /* handle error */ }
//	for script, err := range page.All(ctx) {
//	  if err != nil { break }
//	  _ = script // *runforge.Script, able to Run
//	}
//
// A transform attached when the first page is built (ScriptsClient.List uses
// NewScript) is carried across every page turn, so decorated items keep their
// behavior for the whole traversal. Pages are fetched strictly one at a time;
// breaking out of the loop never triggers another request.
//
// # Streaming
//
// Execution results and logs arrive over duplex connections opened per
// opaque execution address. Listen collects fragments until the connection
// closes and decodes them as one JSON document; Stream yields one decoded
// message per fragment as it arrives:
//
//	for line, err := range cli.Executions().Logs(ctx, execution, nil) {
//	  if err != nil { break }
//	  fmt.Println(line.Message)
//	}
//
// Abandoning the loop tears the connection down. All streaming failures
// (timeout, parse failure, transport fault, empty close) surface as a
// *StreamError wrapping a sentinel cause.
//
// # Errors
//
// API errors are represented by APIError, whose Kind is drawn from a closed
// set selected by status code. Helpers such as IsNotFound, IsAuthentication,
// and IsRateLimit make it easy to branch on common cases. Pagination
// propagates transport errors unchanged; nothing in this package retries.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, auth headers, metrics, rate limiting, circuit
// breaking) and a simple pluggable Cache abstraction with memory and NATS KV
// backends. The forgeclient package composes these pieces for a sensible
// default client; applications with advanced needs can also use these
// primitives directly.
package runforge
