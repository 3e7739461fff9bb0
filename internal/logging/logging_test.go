package logging

import (
	"bytes"
	"encoding/json"
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
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", slog.LevelInfo)

	logger.Info("test message", "key", "value")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v\noutput: %s", err, buf.String())
	}
	if m["msg"] != "test message" {
		t.Errorf("expected msg 'test message', got %q", m["msg"])
	}
	if m["key"] != "value" {
		t.Errorf("expected key 'value', got %q", m["key"])
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "text", slog.LevelInfo)

	logger.Info("test message", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "msg=\"test message\"") {
		t.Errorf("expected text output containing msg, got: %s", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected text output containing key=value, got: %s", out)
	}
}

func TestRequestSink(t *testing.T) {
	var buf bytes.Buffer
	sink := RequestSink(New(&buf, "json", slog.LevelDebug))

	sink("GET https://status.gigaset-elements.de/api/v1/status")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v", err)
	}
	if m["level"] != "DEBUG" {
		t.Errorf("expected DEBUG level, got %v", m["level"])
	}
	if m["component"] != "transport" {
		t.Errorf("expected component=transport, got %v", m["component"])
	}
	if !strings.HasPrefix(m["msg"].(string), "GET ") {
		t.Errorf("unexpected msg %q", m["msg"])
	}
}

func TestRequestSinkFiltered(t *testing.T) {
	var buf bytes.Buffer
	sink := RequestSink(New(&buf, "text", slog.LevelInfo))

	sink("POST https://im.gigaset-elements.de/identity/api/v1/user/login")

	if buf.Len() != 0 {
		t.Errorf("expected debug line to be dropped at info level, got: %s", buf.String())
	}
}
