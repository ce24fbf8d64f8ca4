package runforge

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an APIError. The set is closed: every status code the
// platform can return maps onto exactly one kind, so callers can switch
// exhaustively instead of comparing raw status codes.
type ErrorKind string

// Error kinds selected from HTTP status codes by KindForStatus.
const (
	ErrorKindBadRequest       ErrorKind = "bad_request"
	ErrorKindAuthentication   ErrorKind = "authentication"
	ErrorKindPermissionDenied ErrorKind = "permission_denied"
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindConflict         ErrorKind = "conflict"
	ErrorKindUnprocessable    ErrorKind = "unprocessable_entity"
	ErrorKindRateLimit        ErrorKind = "rate_limit"
	ErrorKindInternalServer   ErrorKind = "internal_server"
	ErrorKindConnection       ErrorKind = "connection"
	ErrorKindGeneric          ErrorKind = "generic"
)

// KindForStatus maps an HTTP status code to its ErrorKind. Pure.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusBadRequest:
		return ErrorKindBadRequest
	case status == http.StatusUnauthorized:
		return ErrorKindAuthentication
	case status == http.StatusForbidden:
		return ErrorKindPermissionDenied
	case status == http.StatusNotFound:
		return ErrorKindNotFound
	case status == http.StatusConflict:
		return ErrorKindConflict
	case status == http.StatusUnprocessableEntity:
		return ErrorKindUnprocessable
	case status == http.StatusTooManyRequests:
		return ErrorKindRateLimit
	case status >= http.StatusInternalServerError:
		return ErrorKindInternalServer
	default:
		return ErrorKindGeneric
	}
}

// errorBody is the wire shape of an error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError represents a failed request to the Runforge API.
//
// For HTTP failures StatusCode, Headers, and Body carry the raw response;
// Detail and Code are filled in when the body parses as the platform's error
// envelope. Connection-level failures (no status code available, including a
// caller-initiated abort) use ErrorKindConnection and wrap the underlying
// error in Err.
type APIError struct {
	Kind       ErrorKind   `json:"kind"             yaml:"kind"`
	StatusCode int         `json:"status,omitempty" yaml:"status,omitempty"`
	Headers    http.Header `json:"-"                yaml:"-"`
	Body       []byte      `json:"-"                yaml:"-"`
	Code       string      `json:"code,omitempty"   yaml:"code,omitempty"`
	Detail     string      `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err        error       `json:"-"                yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Kind == ErrorKindConnection {
		if e.Err != nil {
			return fmt.Sprintf("connection error: %v", e.Err)
		}

		return "connection error"
	}

	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status: %d)", e.Kind, e.Detail, e.StatusCode)
	}

	return fmt.Sprintf("%s (status: %d)", e.Kind, e.StatusCode)
}

// Unwrap exposes the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError builds an APIError from a non-2xx HTTP response. The body is
// kept verbatim; Detail and Code are populated when it parses as the error
// envelope, and left empty otherwise.
func NewAPIError(status int, headers http.Header, body []byte) *APIError {
	apiErr := &APIError{
		Kind:       KindForStatus(status),
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Code = parsed.Error.Code
		apiErr.Detail = parsed.Error.Message
	}

	return apiErr
}

// NewConnectionError builds an APIError for a network-level failure where no
// status code is available.
func NewConnectionError(cause error) *APIError {
	return &APIError{
		Kind: ErrorKindConnection,
		Err:  cause,
	}
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasKind(err, ErrorKindNotFound)
}

// IsAuthentication checks if the error is an authentication error.
func IsAuthentication(err error) bool {
	return hasKind(err, ErrorKindAuthentication)
}

// IsPermissionDenied checks if the error is a permission denied error.
func IsPermissionDenied(err error) bool {
	return hasKind(err, ErrorKindPermissionDenied)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return hasKind(err, ErrorKindConflict)
}

// IsRateLimit checks if the error is a rate limit error.
func IsRateLimit(err error) bool {
	return hasKind(err, ErrorKindRateLimit)
}

// IsConnectionError checks if the error is a network-level failure.
func IsConnectionError(err error) bool {
	return hasKind(err, ErrorKindConnection)
}

func hasKind(err error, kind ErrorKind) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}

	return false
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrNoAddress           = errors.New("execution has no address")
	ErrNoStreamAddress     = errors.New("execution has no stream address")
	ErrCircuitBreakerOpen  = errors.New("circuit breaker is open")
	ErrScriptNotFound      = errors.New("script not found")
	ErrAgentNotFound       = errors.New("agent not found")
)
