package observability

import (
	"errors"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  string
		args []any
		want bool
	}{
		{name: "health probe", msg: "http request", args: []any{"method", "GET", "path", "/healthz"}, want: true},
		{name: "api request", msg: "http request", args: []any{"path", "/v1/matches"}, want: false},
		{name: "other event with probe path", msg: "submit bet failed", args: []any{"path", "/healthz"}, want: false},
		{name: "static asset", msg: "http request", args: []any{"path", "/assets/app.js"}, want: true},
		{name: "path missing", msg: "http request", args: []any{"status", 200}, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := shouldSkipUptraceLog(tc.msg, tc.args); got != tc.want {
				t.Fatalf("shouldSkipUptraceLog = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	t.Parallel()

	attrs := buildOTelLogAttributes([]any{"match_id", "m-1", "bets_applied", 4, "error", errors.New("boom"), "dangling"})
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "match_id" || attrs[0].Value.AsString() != "m-1" {
		t.Fatalf("unexpected match_id attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "bets_applied" || attrs[1].Value.AsInt64() != 4 {
		t.Fatalf("unexpected bets_applied attribute: %+v", attrs[1])
	}
	if attrs[2].Value.AsString() != "boom" {
		t.Fatalf("expected error to render as string, got %+v", attrs[2])
	}
	if attrs[3].Key != "dangling" || attrs[3].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected dangling attribute: %+v", attrs[3])
	}
}

func TestToOTelLogValue(t *testing.T) {
	t.Parallel()

	points := 3
	if v := toOTelLogValue(&points, 0); v.Kind() != otellog.KindInt64 || v.AsInt64() != 3 {
		t.Fatalf("expected pointer to int to unwrap, got %s", v.Kind())
	}
	if v := toOTelLogValue(uint16(7), 0); v.AsInt64() != 7 {
		t.Fatalf("expected uint16 as int64")
	}
	if v := toOTelLogValue([]int{1, 2}, 0); v.Kind() != otellog.KindSlice || len(v.AsSlice()) != 2 {
		t.Fatalf("expected slice value, got %s", v.Kind())
	}

	v := toOTelLogValue(map[string]any{"points": 3, "exact": true}, 0)
	if v.Kind() != otellog.KindMap || len(v.AsMap()) != 2 {
		t.Fatalf("expected 2 map items, got %s", v.Kind())
	}
}
