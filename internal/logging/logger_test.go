package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func captureLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log output, got none")
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return entry
}

func TestLoggerFieldPairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	logger.Info("model fitted", "strategy", "recursive", "entities", 12)

	entry := captureLine(t, &buf)
	if entry["message"] != "model fitted" {
		t.Errorf("expected message 'model fitted', got %v", entry["message"])
	}
	if entry["strategy"] != "recursive" {
		t.Errorf("expected strategy 'recursive', got %v", entry["strategy"])
	}
	if entry["entities"] != float64(12) {
		t.Errorf("expected entities 12, got %v", entry["entities"])
	}
}

func TestLoggerErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	logger.Error("fit failed", "error", fmt.Errorf("no rows"))

	entry := captureLine(t, &buf)
	if entry["error"] != "no rows" {
		t.Errorf("expected error 'no rows', got %v", entry["error"])
	}
	if entry["level"] != "error" {
		t.Errorf("expected level error, got %v", entry["level"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.WarnLevel)

	logger.Debug("hidden")
	logger.Info("also hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug/info suppressed at warn level, got %q", buf.String())
	}

	logger.Warn("visible")
	if buf.Len() == 0 {
		t.Error("expected warn output at warn level")
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel).With("component", "engine")

	logger.Info("predict done")

	entry := captureLine(t, &buf)
	if entry["component"] != "engine" {
		t.Errorf("expected component 'engine', got %v", entry["component"])
	}
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithJobID(ctx, "job-7")

	InfoCtx(ctx, "forecast completed")

	entry := captureLine(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id 'req-123', got %v", entry["request_id"])
	}
	if entry["job_id"] != "job-7" {
		t.Errorf("expected job_id 'job-7', got %v", entry["job_id"])
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(context.Background()) != Global() {
		t.Error("expected global logger for bare context")
	}
}
