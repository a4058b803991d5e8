package debug

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithDebug(t *testing.T) {
	if !IsEnabled(WithDebug(context.Background(), true)) {
		t.Error("IsEnabled should return true when debug is enabled")
	}
	if IsEnabled(WithDebug(context.Background(), false)) {
		t.Error("IsEnabled should return false when debug is disabled")
	}
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	SetupLogger(true)
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(true) should enable debug level logging")
	}

	SetupLogger(false)
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(false) should disable debug level logging")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("SetupLogger(false) should keep warn level logging")
	}
}

func TestNewLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)
	logger.Debug("request complete", "url", "https://api.dnsimple.com/v2/whoami", "Authorization", "Bearer abc123", "token", "abc123")

	out := buf.String()
	if strings.Contains(out, "abc123") {
		t.Errorf("credentials leaked into log output: %s", out)
	}
	if !strings.Contains(out, "url=https://api.dnsimple.com/v2/whoami") {
		t.Errorf("expected url attribute, got %s", out)
	}
}
