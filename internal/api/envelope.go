package api

import (
	"bytes"
	"encoding/json"
	"time"
)

// Pagination is the pagination block of a collection response.
type Pagination struct {
	CurrentPage  int `json:"current_page"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

// HasNextPage reports whether a page follows CurrentPage.
func (p *Pagination) HasNextPage() bool {
	return p != nil && p.CurrentPage < p.TotalPages
}

// Empty is the result of a call whose success response carries no payload.
type Empty map[string]any

// Response is a decoded success response.
type Response[T any] struct {
	Data       T
	Pagination *Pagination
	RateLimit  *RateLimitInfo
	StatusCode int
}

func newResponse[T any](raw *RawResponse, data T) *Response[T] {
	return &Response[T]{
		Data:       data,
		RateLimit:  parseRateLimitInfo(raw.Header, time.Now()),
		StatusCode: raw.StatusCode,
	}
}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

func decodeEnvelope(raw *RawResponse) (envelope, error) {
	var env envelope
	if len(bytes.TrimSpace(raw.Body)) == 0 {
		return env, &ParseError{StatusCode: raw.StatusCode, Reason: "empty response body"}
	}
	if err := json.Unmarshal(raw.Body, &env); err != nil {
		return env, &ParseError{StatusCode: raw.StatusCode, Reason: "response is not a JSON object", Err: err}
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return env, &ParseError{StatusCode: raw.StatusCode, Reason: `missing "data"`}
	}
	env.Data = data
	return env, nil
}

// parseSingle decodes {"data": {...}}.
func parseSingle[T any](raw *RawResponse) (*Response[T], error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &ParseError{StatusCode: raw.StatusCode, Reason: `unexpected "data" shape`, Err: err}
	}
	return newResponse(raw, data), nil
}

// parseCollection decodes {"data": [...], "pagination": {...}}. The page
// numbers are the server's, never the ones that were requested.
func parseCollection[T any](raw *RawResponse) (*Response[[]T], error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if env.Data[0] != '[' {
		return nil, &ParseError{StatusCode: raw.StatusCode, Reason: `"data" is not an array`}
	}
	if env.Pagination == nil {
		return nil, &ParseError{StatusCode: raw.StatusCode, Reason: `missing "pagination"`}
	}
	var data []T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &ParseError{StatusCode: raw.StatusCode, Reason: `unexpected "data" item shape`, Err: err}
	}
	resp := newResponse(raw, data)
	resp.Pagination = env.Pagination
	return resp, nil
}

// parseEmpty accepts any success body, including none.
func parseEmpty(raw *RawResponse) *Response[Empty] {
	return newResponse(raw, Empty{})
}
