package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
)

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{name: "json stdout", cfg: config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{name: "text stderr", cfg: config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{name: "empty", cfg: config.LoggingConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if logger := New(tt.cfg, "1.0.0"); logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "info", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "warning", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "unknown", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: "DEBUG", expected: slog.LevelDebug},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewWithWriter_DefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, "test-version", &buf)

	logger.Info("client configured", "host", "localhost")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	checks := map[string]string{
		"msg":     "client configured",
		"service": "tickbridge",
		"version": "test-version",
		"host":    "localhost",
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("entry[%q] = %v, want %q", key, entry[key], want)
		}
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, "v", &buf)

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn entry missing")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Format: "json"}, "v", &buf)
	child := logger.With("component", "host")

	if child == logger {
		t.Error("expected child logger to be different from parent")
	}

	child.Info("tick")
	if !strings.Contains(buf.String(), `"component":"host"`) {
		t.Errorf("output %q missing component attribute", buf.String())
	}
}

func TestDefaultAndDiscard(t *testing.T) {
	if Default() == nil {
		t.Fatal("expected non-nil default logger")
	}
	// Must not panic.
	Discard().Error("ignored", "k", "v")
}
