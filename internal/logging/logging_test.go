package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.With(String("component", "engine")).Info(context.Background(), "prediction complete",
		Float64("a_btl_db", 106.05),
		Int("modes", 3),
		Err(errors.New("none")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line error: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "prediction complete" || rec["component"] != "engine" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["a_btl_db"] != 106.05 || rec["modes"] != float64(3) || rec["error"] != "none" {
		t.Fatalf("unexpected fields: %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	log.Warn(context.Background(), "kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn not logged: %q", buf.String())
	}
}

func TestErrNil(t *testing.T) {
	if f := Err(nil); f.Key != "error" || f.Value != "" {
		t.Fatalf("Err(nil) = %+v", f)
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("request id %q is not a UUID: %v", id, err)
	}
	again, id2 := EnsureRequestID(ctx)
	if id2 != id || RequestIDFromContext(again) != id {
		t.Fatalf("EnsureRequestID replaced existing id %q with %q", id, id2)
	}

	ctx = ContextWithRequestID(context.Background(), "client-supplied")
	if _, got := EnsureRequestID(ctx); got != "client-supplied" {
		t.Fatalf("request id = %q, want client-supplied", got)
	}
}

func TestRequestLoggerAndContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx, log := WithRequestLogger(context.Background(), base)
	ctx = ContextWithLogger(ctx, log)
	LoggerFromContext(ctx).Info(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line error: %v", err)
	}
	if rec["request_id"] != RequestIDFromContext(ctx) {
		t.Fatalf("request_id = %v, want %q", rec["request_id"], RequestIDFromContext(ctx))
	}

	if LoggerFromContext(context.Background()) != nil {
		t.Fatalf("LoggerFromContext on empty context should be nil")
	}
}

func TestFromContextFallback(t *testing.T) {
	var buf bytes.Buffer
	fallback := New(Config{Format: "json", Output: &buf})

	FromContext(context.Background(), fallback).Info(context.Background(), "fallback")
	if !strings.Contains(buf.String(), "fallback") {
		t.Fatalf("fallback logger not used: %q", buf.String())
	}
	if FromContext(context.TODO(), nil) == nil {
		t.Fatalf("FromContext without logger or fallback returned nil")
	}
}
