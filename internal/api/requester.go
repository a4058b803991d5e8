package api

import "context"

// PathResolver builds endpoint URLs.
type PathResolver interface {
	// accountURL returns the URL of an account scoped resource.
	// Example: accountURL("1010", "/templates", "1", nil) -> ".../v2/1010/templates/1"
	accountURL(accountID, resourcePath, resourceID string, opts *ListOptions) (string, error)

	// apiURL returns the URL of an endpoint outside any account.
	// Example: apiURL("/whoami") -> ".../v2/whoami"
	apiURL(path string) string
}

// HTTPExecutor performs one exchange and classifies the response: non-2xx
// statuses come back as *APIError, failed exchanges as *TransportError.
type HTTPExecutor interface {
	do(ctx context.Context, method, url string, body any) (*RawResponse, error)
}

// Requester is the request surface used by resource bindings. Tests can
// replace either half independently.
type Requester interface {
	PathResolver
	HTTPExecutor
}
