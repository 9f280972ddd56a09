package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/socialhub/internal/actorctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLogger_AddsTraceIDsWhenSpanPresent(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "socialhub-api", "prod")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	ctx = actorctx.WithRequestID(actorctx.WithUserID(ctx, "u-1"), "req-1")
	log.InfoContext(ctx, "hello")
	span.End()

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}

	if line["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id missing or wrong: %v", line)
	}
	if line["service"] != "socialhub-api" || line["env"] != "prod" {
		t.Fatalf("service/env attrs missing: %v", line)
	}
	if line["request_id"] != "req-1" || line["user_id"] != "u-1" {
		t.Fatalf("request identity missing: %v", line)
	}
}

func TestLogger_DebugOnlyInDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "socialhub-api", "prod").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered outside dev, got %s", buf.String())
	}

	newLogger(&buf, "socialhub-api", "dev").Debug("shown")
	if !bytes.Contains(buf.Bytes(), []byte("msg=shown")) {
		t.Fatalf("dev should emit debug as text, got %s", buf.String())
	}
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: &pgconn.PgError{Code: "23505"}, want: "unique_violation"},
		{err: &pgconn.PgError{Code: "42P01"}, want: "pg_42P01"},
		{err: pgx.ErrNoRows, want: "no_rows"},
		{err: context.DeadlineExceeded, want: "timeout"},
		{err: errors.New("connection reset by peer"), want: "connection"},
		{err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		if got := classifyDBErr(tt.err); got != tt.want {
			t.Fatalf("classifyDBErr(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserveDB_NilPromStillRuns(t *testing.T) {
	var p *Prom
	called := false

	err := p.ObserveDB(context.Background(), "posts.list", func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("expected fn to run without error, called=%v err=%v", called, err)
	}
}

func TestInitTracer_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "socialhub-api"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown failed: %v", err)
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 0, want: "AlwaysOnSampler"},
		{ratio: 1, want: "AlwaysOnSampler"},
		{ratio: 2, want: "AlwaysOnSampler"},
		{ratio: 0.5, want: "TraceIDRatioBased{0.5}"},
	}

	for _, tt := range tests {
		got := samplerFor(tt.ratio).Description()
		if !strings.Contains(got, tt.want) {
			t.Fatalf("samplerFor(%v) = %q, want it to contain %q", tt.ratio, got, tt.want)
		}
		if tt.want == "AlwaysOnSampler" && strings.Contains(got, "TraceIDRatioBased") {
			t.Fatalf("samplerFor(%v) = %q, want no ratio sampling", tt.ratio, got)
		}
	}
}
