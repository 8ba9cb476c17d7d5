package config_test

import (
	"bytes"
	"strings"
	"testing"

	"tasktrack/internal/config"
)

func TestLogger_WarnsByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := (&config.Config{}).Logger(&buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("dropped record", "op", "list")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug and info should be filtered, got %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "op=list") {
		t.Errorf("expected warning, got %q", out)
	}
}

func TestLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := (&config.Config{Debug: true}).Logger(&buf)

	logger.Debug("request", "status", 200)

	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}
