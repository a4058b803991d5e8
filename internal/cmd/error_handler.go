package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dnsimple/dnsimple-cli/internal/api"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var apiErr *api.APIError
	var transportErr *api.TransportError
	var parseErr *api.ParseError

	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n", apiErr.HTTPStatus, apiErr.Message)
		if fields := apiErr.FieldErrors(); fields != "" {
			msg.WriteString(fields)
			msg.WriteString("\n")
		}
		msg.WriteString("\n")
		msg.WriteString(suggestionsForStatusCode(apiErr.HTTPStatus))
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case errors.As(err, &transportErr):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		switch cause := strings.ToLower(transportErr.Err.Error()); {
		case strings.Contains(cause, "no such host"):
			msg.WriteString("  - Check the base URL spelling: dnsimple auth status\n")
			msg.WriteString("  - Verify your DNS settings\n")
		case strings.Contains(cause, "certificate") || strings.Contains(cause, "tls"):
			msg.WriteString("  - Verify the server's TLS certificate\n")
			msg.WriteString("  - Ensure the base URL uses https://\n")
		default:
			msg.WriteString("  - Check your network connection\n")
			msg.WriteString("  - Verify the base URL: dnsimple auth status\n")
			msg.WriteString("  - Increase --retry-max or --timeout\n")
		}

	case errors.As(err, &parseErr):
		fmt.Fprintf(&msg, "Unexpected response: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check that the base URL points at the DNSimple API\n")
		msg.WriteString("  - Use --debug to see the request\n")

	case errors.Is(err, api.ErrMissingAccountID):
		fmt.Fprintf(&msg, "Error: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Pass --account or set DNSIMPLE_ACCOUNT_ID\n")
		msg.WriteString("  - Store one with: dnsimple auth login --account <id>\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")

	case 401:
		suggestions.WriteString("  - Your API token may be invalid or expired\n")
		suggestions.WriteString("  - Run: dnsimple auth login\n")

	case 402:
		suggestions.WriteString("  - Your plan does not include this feature\n")

	case 403:
		suggestions.WriteString("  - The token is not allowed to perform this action\n")
		suggestions.WriteString("  - Check the --account you are using\n")

	case 404:
		suggestions.WriteString("  - The resource doesn't exist\n")
		suggestions.WriteString("  - Check the ID or short name is correct\n")

	case 422:
		suggestions.WriteString("  - Validation failed\n")
		suggestions.WriteString("  - Check your input values\n")

	case 429:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Wait for the rate limit window to reset\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
