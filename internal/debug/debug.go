// Package debug carries the --debug switch through a context and installs
// the matching slog handler.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey struct{}

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// Level is Debug in debug mode and Warn otherwise.
func Level(enabled bool) slog.Level {
	if enabled {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

const redacted = "[REDACTED]"

func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	switch strings.ToLower(a.Key) {
	case "token", "authorization", "api_token":
		return slog.String(a.Key, redacted)
	}
	return a
}

// NewLogger returns a text logger on w. Credential attributes are redacted.
func NewLogger(w io.Writer, enabled bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       Level(enabled),
		ReplaceAttr: redactSecrets,
	}))
}

// SetupLogger installs a stderr logger as the slog default.
func SetupLogger(enabled bool) {
	slog.SetDefault(NewLogger(os.Stderr, enabled))
}
