package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func decodeLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(b), &m); err != nil {
		t.Fatalf("log line not JSON: %v (%s)", err, b)
	}
	return m
}

func TestSlogBridge_CarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Service: "storefront-map", Component: "test"}, &buf)
	log := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithSession(ctx, "sess-1")
	log.InfoContext(ctx, "refreshed", "rendered", 3, "ok", true)

	m := decodeLine(t, buf.Bytes())
	want := map[string]any{
		"msg":        "refreshed",
		"level":      "info",
		"service":    "storefront-map",
		"component":  "test",
		"request_id": "req-1",
		"session":    "sess-1",
		"rendered":   float64(3),
		"ok":         true,
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("field %s=%v want %v (line %v)", k, m[k], v, m)
		}
	}
	if _, ok := m["timestamp"]; !ok {
		t.Fatalf("missing timestamp")
	}
}

func TestBuild_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn"}, &buf)
	log := NewSlog(&zl)
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level, got %s", buf.String())
	}
	log.Warn("kept")
	if m := decodeLine(t, buf.Bytes()); m["msg"] != "kept" {
		t.Fatalf("unexpected line %v", m)
	}
	Build(Config{Level: "info"}, &buf)
}

func TestWithSession_EmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	if WithSession(ctx, "") != ctx {
		t.Fatalf("expected same context for empty session")
	}
	if WithRequestID(ctx, "") == ctx {
		t.Fatalf("expected generated request id")
	}
}

func TestSlogBridge_GroupsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug"}, &buf)
	log := NewSlog(&zl).WithGroup("load").With("source", "file")
	log.Error("failed", "err", errors.New("boom"))
	Build(Config{Level: "info"}, &bytes.Buffer{})

	m := decodeLine(t, buf.Bytes())
	if m["load.source"] != "file" || m["load.err"] != "boom" || m["level"] != "error" {
		t.Fatalf("unexpected line %v", m)
	}
}
