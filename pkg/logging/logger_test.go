package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T) (*StructuredLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewStructuredLoggerWithCore(core, "climate-api-test", "test"), logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"", InfoLevel},
		{"info", InfoLevel},
		{"DEBUG", DebugLevel},
		{" warn ", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLogLevel_String(t *testing.T) {
	if DebugLevel.String() != "DEBUG" {
		t.Errorf("DebugLevel.String() = %v, want DEBUG", DebugLevel.String())
	}
	if LogLevel(42).String() != "UNKNOWN" {
		t.Errorf("LogLevel(42).String() = %v, want UNKNOWN", LogLevel(42).String())
	}
}

func TestStructuredLogger_Fields(t *testing.T) {
	logger, logs := newObservedLogger(t)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	logger.Info(ctx, "[TEST] hello", Fields{"station": "USC00519397"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	entry := entries[0]
	if entry.Message != "[TEST] hello" {
		t.Errorf("Message = %v, want %v", entry.Message, "[TEST] hello")
	}

	fields := entry.ContextMap()
	if fields["service"] != "climate-api-test" {
		t.Errorf("service = %v, want climate-api-test", fields["service"])
	}
	if fields["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", fields["request_id"])
	}

	nested, ok := fields["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("fields type = %T, want map[string]interface{}", fields["fields"])
	}
	if nested["station"] != "USC00519397" {
		t.Errorf("fields.station = %v, want USC00519397", nested["station"])
	}
}

func TestStructuredLogger_Error(t *testing.T) {
	logger, logs := newObservedLogger(t)

	logger.Error(context.Background(), "[TEST_ERROR] failed", Fields{}, errors.New("boom"))

	entries := logs.FilterMessage("[TEST_ERROR] failed").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Level != zap.ErrorLevel {
		t.Errorf("Level = %v, want %v", entries[0].Level, zap.ErrorLevel)
	}
	if got := entries[0].ContextMap()["error"]; got != "boom" {
		t.Errorf("error = %v, want boom", got)
	}
	if _, ok := entries[0].ContextMap()["fields"]; ok {
		t.Error("empty Fields should not be attached")
	}
}

func TestContextLogger_MergeFields(t *testing.T) {
	logger, logs := newObservedLogger(t)

	scoped := logger.WithFields(Fields{"component": "ingester", "stage": "INIT"})
	scoped.Warn(context.Background(), "[TEST] merged", Fields{"stage": "LOAD"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	nested := entries[0].ContextMap()["fields"].(map[string]interface{})
	if nested["component"] != "ingester" {
		t.Errorf("component = %v, want ingester", nested["component"])
	}
	if nested["stage"] != "LOAD" {
		t.Errorf("stage = %v, want LOAD (provided fields win)", nested["stage"])
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q, want empty", got)
	}

	ctx := ContextWithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("RequestIDFromContext() = %q, want abc", got)
	}
}
