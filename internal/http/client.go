// Package http provides the generic JSON-over-HTTP transport for the
// Runforge API client.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/runforge-io/runforge-client/internal/auth"
	"github.com/runforge-io/runforge-client/internal/constants"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// Request describes one API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a decoded-enough API response: status, headers, and the raw
// body. Resource clients unmarshal the body into their own types.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the synchronous transport. It owns retries for transient
// failures; everything above it (pagination, resource clients) treats a
// failure as terminal.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       runforge.Logger
	debug        bool
	userAgent    string
	cacheManager *runforge.CacheManager
	interceptors *runforge.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger used for debug logging.
func WithLogger(logger runforge.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging when a logger is set.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig tunes the retry behavior for transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithCache enables GET response caching through the given manager.
func WithCache(manager *runforge.CacheManager) Option {
	return func(c *Client) {
		c.cacheManager = manager
	}
}

// WithInterceptors installs an interceptor chain run around every request.
func WithInterceptors(chain *runforge.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithHTTPTimeout sets the per-attempt HTTP timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// NewClient creates a transport rooted at baseURL. tokenManager may be nil
// for unauthenticated use.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    "runforge-client/1.0",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the API base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes one request. A non-2xx response returns both the Response and
// a *runforge.APIError built from it; a network-level failure returns a
// connection-kind APIError with no Response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	intercepted, err := c.runRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.buildRequest(ctx, req, intercepted)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    httpReq.URL.String(),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, runforge.NewConnectionError(err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, runforge.NewConnectionError(fmt.Errorf("reading response body: %w", err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		})
	}

	var respErr error
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respErr = runforge.NewAPIError(resp.StatusCode, resp.Headers, resp.Body)
	}

	c.runResponseInterceptors(ctx, req, resp, respErr)

	if respErr != nil {
		return resp, respErr
	}

	return resp, nil
}

// runRequestInterceptors applies the chain to a Request view of req and
// returns the mutated headers to merge into the outgoing request.
func (c *Client) runRequestInterceptors(ctx context.Context, req *Request) (http.Header, error) {
	if c.interceptors == nil {
		return nil, nil
	}

	view := &runforge.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: make(http.Header),
	}

	for key, value := range req.Headers {
		view.Headers.Set(key, value)
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, view)
	if err != nil {
		return nil, err
	}

	return view.Headers, nil
}

// runResponseInterceptors applies the chain to the finished exchange.
// Interceptor failures here are observational only and are logged, not
// propagated.
func (c *Client) runResponseInterceptors(ctx context.Context, req *Request, resp *Response, respErr error) {
	if c.interceptors == nil {
		return
	}

	view := &runforge.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		Error:      respErr,
	}

	err := c.interceptors.ExecuteResponseInterceptors(ctx, &runforge.Request{Method: req.Method, Path: req.Path}, view)
	if err != nil && c.logger != nil {
		c.logger.Warn("response interceptor failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// buildRequest assembles the retryable HTTP request, including auth and
// content headers.
func (c *Client) buildRequest(ctx context.Context, req *Request, extraHeaders http.Header) (*retryablehttp.Request, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader

	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting auth token: %w", err)
		}

		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	for key, values := range extraHeaders {
		for _, value := range values {
			httpReq.Header.Set(key, value)
		}
	}

	return httpReq, nil
}

// Get performs a GET request. When a cache manager is configured the
// response body is served from and stored into the cache. Only the body is
// cached: a cache hit yields a 200 response with nil Headers, so callers
// must not depend on response headers for GET results.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	var cacheKey string

	if c.cacheManager != nil {
		params := make(map[string]string, len(query))
		for key := range query {
			params[key] = query.Get(key)
		}

		cacheKey = c.cacheManager.GetCacheKey(http.MethodGet, path, params)
		if data, ok := c.cacheManager.Get(ctx, cacheKey); ok {
			return &Response{StatusCode: http.StatusOK, Body: data}, nil
		}
	}

	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return resp, err
	}

	if c.cacheManager != nil {
		_ = c.cacheManager.Set(ctx, cacheKey, resp.Body)
	}

	return resp, nil
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// RequestPage implements runforge.PageRequester: one list fetch returning
// the raw JSON body for the pagination engine to decode.
func (c *Client) RequestPage(ctx context.Context, path string, opts *runforge.PageOptions) ([]byte, error) {
	req := &Request{
		Method: http.MethodGet,
		Path:   path,
	}

	if opts != nil {
		req.Query = opts.Query
		req.Headers = opts.Headers
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}
