package app

import (
	"strings"
	"testing"
)

func TestFormatDBQueryForTrace(t *testing.T) {
	t.Parallel()

	got := formatDBQueryForTrace(" SELECT   *\nFROM bets \t WHERE match_id = $1 ")
	want := "SELECT * FROM bets WHERE match_id = $1"
	if got != want {
		t.Fatalf("unexpected formatted query: %q", got)
	}

	long := formatDBQueryForTrace("SELECT " + strings.Repeat("x", maxTracedQueryLength))
	if len(long) != maxTracedQueryLength+3 || !strings.HasSuffix(long, "...") {
		t.Fatalf("expected truncated query, got len=%d", len(long))
	}
}
