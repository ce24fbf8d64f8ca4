package runforge_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := runforge.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *runforge.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *runforge.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	req := &runforge.Request{Method: "GET", Path: "/v1/scripts"}
	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_RequestInterceptorFailureStopsChain(t *testing.T) {
	chain := runforge.NewInterceptorChain()
	ctx := context.Background()

	var reached bool

	chain.AddRequestInterceptor(func(ctx context.Context, req *runforge.Request) error {
		return assert.AnError
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *runforge.Request) error {
		reached = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(ctx, &runforge.Request{})
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, reached)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := runforge.NewInterceptorChain()
	ctx := context.Background()

	var sawStatus int

	chain.AddResponseInterceptor(func(ctx context.Context, req *runforge.Request, resp *runforge.Response) error {
		sawStatus = resp.StatusCode

		return nil
	})

	req := &runforge.Request{Method: "GET", Path: "/v1/scripts"}
	resp := &runforge.Response{StatusCode: 200}
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, resp))
	assert.Equal(t, 200, sawStatus)
}

func TestAuthenticationInterceptor(t *testing.T) {
	interceptor := runforge.AuthenticationInterceptor(func(ctx context.Context) (string, error) {
		return "test-token", nil
	})

	req := &runforge.Request{Method: "GET", Path: "/v1/scripts"}
	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "Bearer test-token", req.Headers.Get("Authorization"))
}

func TestAuthenticationInterceptor_ProviderFailure(t *testing.T) {
	interceptor := runforge.AuthenticationInterceptor(func(ctx context.Context) (string, error) {
		return "", assert.AnError
	})

	err := interceptor(context.Background(), &runforge.Request{})
	require.ErrorIs(t, err, assert.AnError)
}

func TestHeaderInterceptor(t *testing.T) {
	interceptor := runforge.HeaderInterceptor(map[string]string{
		"X-Custom":  "value",
		"X-Another": "other",
	})

	req := &runforge.Request{Headers: http.Header{}}
	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "value", req.Headers.Get("X-Custom"))
	assert.Equal(t, "other", req.Headers.Get("X-Another"))
}

func TestMetricsInterceptors(t *testing.T) {
	collector := runforge.NewMetricsCollector()
	requestInterceptor := runforge.MetricsRequestInterceptor(collector)
	responseInterceptor := runforge.MetricsResponseInterceptor(collector)
	ctx := context.Background()

	req := &runforge.Request{Method: "GET", Path: "/v1/scripts"}
	require.NoError(t, requestInterceptor(ctx, req))
	require.NoError(t, responseInterceptor(ctx, req, &runforge.Response{StatusCode: 200}))

	metrics := collector.GetMetrics("GET /v1/scripts")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(1), metrics.TotalRequests)
	assert.Equal(t, int64(0), metrics.TotalErrors)

	// An error response increments the error count
	require.NoError(t, requestInterceptor(ctx, req))
	require.NoError(t, responseInterceptor(ctx, req, &runforge.Response{StatusCode: 500}))
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
}

func TestMetricsCollector_UnknownEndpoint(t *testing.T) {
	collector := runforge.NewMetricsCollector()
	assert.Nil(t, collector.GetMetrics("GET /v1/unknown"))
}

func TestCircuitBreaker(t *testing.T) {
	breaker := runforge.NewCircuitBreaker(&runforge.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          50 * time.Millisecond,
		SuccessThreshold: 1,
	})
	requestInterceptor := runforge.CircuitBreakerRequestInterceptor(breaker)
	responseInterceptor := runforge.CircuitBreakerResponseInterceptor(breaker)
	ctx := context.Background()

	req := &runforge.Request{Method: "GET", Path: "/v1/scripts"}
	failure := &runforge.Response{StatusCode: 503}
	success := &runforge.Response{StatusCode: 200}

	// Closed: requests pass
	require.NoError(t, requestInterceptor(ctx, req))

	// Two failures trip the breaker
	require.NoError(t, responseInterceptor(ctx, req, failure))
	require.NoError(t, responseInterceptor(ctx, req, failure))

	err := requestInterceptor(ctx, req)
	require.ErrorIs(t, err, runforge.ErrCircuitBreakerOpen)

	// After the timeout the breaker half-opens and a success closes it
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, requestInterceptor(ctx, req))
	require.NoError(t, responseInterceptor(ctx, req, success))
	require.NoError(t, requestInterceptor(ctx, req))
}

func TestRateLimitInterceptor(t *testing.T) {
	interceptor := runforge.RateLimitInterceptor(2)
	req := &runforge.Request{Method: "GET", Path: "/v1/scripts"}

	// Two tokens available up front
	require.NoError(t, interceptor(context.Background(), req))
	require.NoError(t, interceptor(context.Background(), req))

	// Bucket drained: a cancelled context is the only way out
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := interceptor(ctx, req)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoggingInterceptors(t *testing.T) {
	logger := &recordingLogger{}
	requestInterceptor := runforge.LoggingInterceptor(logger)
	responseInterceptor := runforge.LoggingResponseInterceptor(logger)
	ctx := context.Background()

	req := &runforge.Request{Method: "GET", Path: "/v1/scripts"}
	require.NoError(t, requestInterceptor(ctx, req))
	require.NoError(t, responseInterceptor(ctx, req, &runforge.Response{StatusCode: 200}))
	require.NoError(t, responseInterceptor(ctx, req, &runforge.Response{StatusCode: 500, Error: assert.AnError}))

	assert.Equal(t, 2, logger.debugs)
	assert.Equal(t, 1, logger.errors)
}

type recordingLogger struct {
	debugs int
	infos  int
	warns  int
	errors int
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.debugs++ }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.infos++ }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.warns++ }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.errors++ }
