package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithFields(ctx, map[string]any{"merchant_id": 42})
	logg.Info(ctx, "report.start")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log output: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("missing request id in %v", entry)
	}
	if entry["merchant_id"] != float64(42) {
		t.Fatalf("missing merchant id in %v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("missing service in %v", entry)
	}
	if entry["message"] != "report.start" {
		t.Fatalf("missing message in %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("empty value should default to info")
	}
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatal("expected debug level")
	}
	if ParseLevel("garbage") != zerolog.InfoLevel {
		t.Fatal("unknown value should default to info")
	}
}
