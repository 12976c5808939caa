package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "production",
		Level:       slog.LevelInfo,
	})

	log.Info("index complete", "books", 42)

	out := buf.String()
	if !strings.Contains(out, `"msg":"index complete"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"books":42`) {
		t.Errorf("expected books attribute, got %q", out)
	}
}

func TestPrettyHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "development",
		Level:       slog.LevelWarn,
	})

	log.Debug("hidden")
	log.Info("also hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected suppressed records below warn, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("expected warn record, got %q", out)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "production",
	})

	log.WithError(errTest).Error("extraction failed")

	if !strings.Contains(buf.String(), "no extractable text") {
		t.Errorf("expected error attribute in output, got %q", buf.String())
	}
}

var errTest = &testError{}

type testError struct{}

func (e *testError) Error() string { return "no extractable text" }
