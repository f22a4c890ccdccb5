package logging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	core, logs := observer.New(LevelInfo)
	logger := FromZap(zap.New(core))

	logger.WarnContext(context.Background(), "submit bet failed", "match_id", "m1", "error", errors.New("boom"))
	logger.Debug("dropped below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["match_id"] != "m1" {
		t.Fatalf("unexpected match_id field: %v", fields["match_id"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", fields["error"])
	}
}

func TestLogger_OddArgsKeepLastKey(t *testing.T) {
	core, logs := observer.New(LevelInfo)
	logger := FromZap(zap.New(core))

	logger.Info("odd", "player_id")

	fields := logs.All()[0].ContextMap()
	if _, ok := fields["player_id"]; !ok {
		t.Fatalf("expected dangling key to be kept, got %v", fields)
	}
}

func TestSetMirror(t *testing.T) {
	core, _ := observer.New(LevelInfo)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, _ ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.InfoContext(context.Background(), "settled match")
	logger.DebugContext(context.Background(), "filtered")

	if len(got) != 1 || got[0] != "info:settled match" {
		t.Fatalf("unexpected mirrored entries: %v", got)
	}
}

func TestSetMirror_IncludesBoundFields(t *testing.T) {
	core, _ := observer.New(LevelInfo)
	logger := FromZap(zap.New(core)).With("service", "prediction-pool")

	var got []any
	SetMirror(func(_ context.Context, _ Level, _ string, args ...any) {
		got = args
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.InfoContext(context.Background(), "bet submitted", "bet_id", "b1")
	logger.Info("no context, not mirrored")

	if len(got) != 4 || got[0] != "service" || got[3] != "b1" {
		t.Fatalf("expected bound and call fields, got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNew_WritesJSONLines(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := New(&buf, LevelInfo)
	logger.Info("ranking recalculated", "players", 2)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, `"msg":"ranking recalculated"`) || !strings.Contains(out, `"players":2`) {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered: %s", out)
	}
}
