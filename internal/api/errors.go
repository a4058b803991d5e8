package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Caller errors. These are returned before any request is sent.
var (
	ErrMissingAccountID  = errors.New("account identifier is required")
	ErrMissingResourceID = errors.New("resource identifier is required")
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	HTTPStatus int
	Message    string
	// Errors maps a field name to its validation messages. Nil when the
	// server did not send any.
	Errors    map[string][]string
	RequestID string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error (status %d): %s", e.HTTPStatus, e.Message)
	if details := e.FieldErrors(); details != "" {
		msg += "\nValidation errors:\n" + details
	}
	return msg
}

// Code returns the machine readable code for the status.
func (e *APIError) Code() ErrorCode {
	return ErrorCodeFromStatus(e.HTTPStatus)
}

// FieldErrors formats Errors as "  field: message" lines in a stable order.
func (e *APIError) FieldErrors() string {
	if len(e.Errors) == 0 {
		return ""
	}
	var lines []string
	for field, messages := range e.Errors {
		for _, m := range messages {
			lines = append(lines, fmt.Sprintf("  %s: %s", field, m))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// TransportError means the exchange did not complete: no response was
// received, or the response body could not be read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is a 2xx response whose body does not have the expected shape.
type ParseError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected API response (status %d): %s: %v", e.StatusCode, e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected API response (status %d): %s", e.StatusCode, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedOperationError is returned when a resource does not offer an
// operation, e.g. updating a template record.
type UnsupportedOperationError struct {
	Resource  string
	Operation Operation
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Resource, e.Operation)
}

// normalizeError turns a non-2xx response into an *APIError. It never fails:
// bodies that are empty or not the documented error shape fall back to the
// status text.
func normalizeError(raw *RawResponse) *APIError {
	apiErr := &APIError{
		HTTPStatus: raw.StatusCode,
		RequestID:  requestIDFromHeader(raw.Header),
	}

	// message and errors decode independently: a malformed errors value
	// must not cost the message.
	var body map[string]json.RawMessage
	if len(raw.Body) > 0 && json.Unmarshal(raw.Body, &body) == nil {
		var message string
		if json.Unmarshal(body["message"], &message) == nil {
			apiErr.Message = strings.TrimSpace(message)
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(body["errors"], &fields) == nil {
			apiErr.Errors = fieldErrors(fields)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = statusMessage(raw.StatusCode)
	}
	return apiErr
}

func statusMessage(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("HTTP %d", code)
}

// fieldErrors accepts both {"name": ["can't be blank"]} and {"name": "can't be blank"}.
func fieldErrors(raw map[string]json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string][]string, len(raw))
	for field, value := range raw {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			out[field] = list
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			out[field] = []string{single}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return header.Get("X-Request-Id")
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsValidation reports whether err is a 400 or 422 from the API.
func IsValidation(err error) bool {
	status := statusOf(err)
	return status == http.StatusBadRequest || status == http.StatusUnprocessableEntity
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	return 0
}

// IsTransportError reports whether err is a *TransportError.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsParseError reports whether err is a *ParseError.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}
