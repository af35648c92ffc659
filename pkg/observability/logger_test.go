package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"ERROR", ErrorLevel},
		{"", InfoLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)
	logger.WithField("service", "app").Info("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["service"] != "app" {
		t.Errorf("service = %v, want app", entry["service"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Debug("dropped")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("below-level messages were emitted: %s", buf.String())
	}

	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warn message was dropped")
	}
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)
	logger.WithError(errors.New("boom")).Error("failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}

	// nil error is a no-op
	if got := logger.WithError(nil); got != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithPrincipalID(ctx, "alice")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID = %q, want req-1", got)
	}
	if got := GetPrincipalID(ctx); got != "alice" {
		t.Errorf("GetPrincipalID = %q, want alice", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on empty context = %q, want empty", got)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	ctx := WithRequestID(context.Background(), "req-2")
	logger.FromContext(ctx).Info("annotated")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["request_id"] != "req-2" {
		t.Errorf("request_id = %v, want req-2", entry["request_id"])
	}
}
