package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a machine readable error classification.
type ErrorCode string

const (
	ErrBadRequest      ErrorCode = "bad_request"
	ErrUnauthorized    ErrorCode = "unauthorized"
	ErrForbidden       ErrorCode = "forbidden"
	ErrNotFound        ErrorCode = "not_found"
	ErrConflict        ErrorCode = "conflict"
	ErrValidation      ErrorCode = "validation_failed"
	ErrRateLimited     ErrorCode = "rate_limited"
	ErrServerError     ErrorCode = "server_error"
	ErrTimeout         ErrorCode = "timeout"
	ErrNetwork         ErrorCode = "network_error"
	ErrInvalidResponse ErrorCode = "invalid_response"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnknown         ErrorCode = "unknown"
)

// IsRetryable reports whether a caller may reasonably retry the request.
// The client itself never retries on any of them.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrRateLimited, ErrServerError, ErrTimeout, ErrNetwork:
		return true
	default:
		return false
	}
}

// Suggestion returns a short hint for resolving the error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'dnsimple auth login' to store a valid API token"
	case ErrForbidden:
		return "Check that the token has access to this account"
	case ErrNotFound:
		return "Verify the account and resource identifiers"
	case ErrRateLimited:
		return "Wait until the rate limit window resets and retry"
	case ErrValidation:
		return "Check the input values"
	case ErrBadRequest:
		return "Check the request parameters"
	case ErrConflict:
		return "The resource state may have changed; refresh and retry"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrTimeout:
		return "The request timed out; retry or raise --timeout"
	case ErrNetwork:
		return "Check network connectivity and the configured base URL"
	case ErrInvalidResponse:
		return "The server response was not understood; retry with --debug"
	case ErrInvalidArgument:
		return "Pass --account or set DNSIMPLE_ACCOUNT_ID"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 422:
		return ErrValidation
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError is the JSON form of an error printed by the CLI.
type StructuredError struct {
	Code          ErrorCode      `json:"code"`
	Message       string         `json:"message"`
	Retryable     bool           `json:"retryable"`
	Suggestion    string         `json:"suggestion,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	AllowedValues []string       `json:"allowed_values,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewValidationError creates a StructuredError for a flag value outside
// its allowed set.
func NewValidationError(field string, got string, allowed []string) *StructuredError {
	return &StructuredError{
		Code:          ErrValidation,
		Message:       fmt.Sprintf("invalid %s %q: must be one of %s", field, got, strings.Join(allowed, ", ")),
		Suggestion:    fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")),
		AllowedValues: allowed,
		Context:       map[string]any{"field": field, "got": got},
	}
}

func structuredFromAPIError(apiErr *APIError) *StructuredError {
	se := NewStructuredError(apiErr.Code(), apiErr.Message)
	se.Context = map[string]any{"status_code": apiErr.HTTPStatus}
	if apiErr.RequestID != "" {
		se.Context["request_id"] = apiErr.RequestID
	}
	if len(apiErr.Errors) > 0 {
		se.Context["errors"] = apiErr.Errors
	}
	return se
}

// StructuredErrorFromError classifies any error returned by this package.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return structuredFromAPIError(apiErr)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		code := ErrNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			code = ErrTimeout
		}
		se := NewStructuredError(code, err.Error())
		se.Context = map[string]any{"method": transportErr.Method, "url": transportErr.URL}
		return se
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		se := NewStructuredError(ErrInvalidResponse, err.Error())
		se.Context = map[string]any{"status_code": parseErr.StatusCode}
		return se
	}

	if errors.Is(err, ErrMissingAccountID) {
		return NewStructuredError(ErrInvalidArgument, err.Error())
	}
	if errors.Is(err, ErrMissingResourceID) || errors.Is(err, ErrUnsupportedMethod) {
		se := NewStructuredError(ErrInvalidArgument, err.Error())
		se.Suggestion = ""
		return se
	}

	var unsupported *UnsupportedOperationError
	if errors.As(err, &unsupported) {
		return &StructuredError{Code: ErrInvalidArgument, Message: err.Error()}
	}

	return &StructuredError{Code: ErrUnknown, Message: err.Error()}
}
