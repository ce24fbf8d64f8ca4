package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// DefaultStreamTimeout is the idle timeout for duplex stream connections.
	DefaultStreamTimeout = 10 * time.Minute

	// HandshakeTimeout bounds the websocket opening handshake.
	HandshakeTimeout = 15 * time.Second
)

// Retry limits for the HTTP transport.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Buffering and queue sizes.
const (
	// StreamQueueSize is the inbound fragment queue depth for stream
	// connections. The reader blocks once it is full, which is the
	// backpressure signal toward the server.
	StreamQueueSize = 100
)

// Circuit breaker defaults.
const (
	// CircuitBreakerThreshold is the failure count that opens the breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is how long the breaker stays open.
	CircuitBreakerTimeout = 30 * time.Second

	// CircuitBreakerSuccessThreshold closes a half-open breaker.
	CircuitBreakerSuccessThreshold = 2
)

// Pagination and display limits.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 50

	// FirstPageNumber is the page number reported when the server omits one.
	FirstPageNumber = 1
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of entries in the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the lifetime of a cached response.
	DefaultCacheTTL = 1 * time.Minute
)

// Circuit breaker states.
const (
	// StatusOpen indicates an open state.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open state.
	StatusHalfOpen = "half-open"
)
