package match

import (
	"testing"
	"time"
)

func TestParseKickoff(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		date  string
		clock string
		want  time.Time
		ok    bool
	}{
		{name: "iso date short time", date: "2024-05-01", clock: "15:00", want: want, ok: true},
		{name: "iso date long time", date: "2024-05-01", clock: "15:00:00", want: want, ok: true},
		{name: "dotted date short time", date: "01.05.2024", clock: "15:00", want: want, ok: true},
		{name: "dotted date long time", date: "01.05.2024", clock: "15:00:00", want: want, ok: true},
		{name: "seconds kept", date: "2024-05-01", clock: "15:00:30", want: want.Add(30 * time.Second), ok: true},
		{name: "surrounding whitespace", date: " 2024-05-01 ", clock: " 15:00 ", want: want, ok: true},
		{name: "fallback slash date", date: "2024/05/01", clock: "15:00", want: want, ok: true},
		{name: "fallback long month", date: "May 1, 2024", clock: "15:00", want: want, ok: true},
		{name: "empty date", date: "", clock: "15:00"},
		{name: "garbage date", date: "tomorrow", clock: "15:00"},
		{name: "non existent date", date: "2024-02-30", clock: "15:00"},
		{name: "non existent dotted date", date: "31.04.2024", clock: "15:00"},
		{name: "empty time", date: "2024-05-01", clock: ""},
		{name: "single digit hour", date: "2024-05-01", clock: "9:00"},
		{name: "hour out of range", date: "2024-05-01", clock: "24:00"},
		{name: "minute out of range", date: "2024-05-01", clock: "12:60"},
		{name: "second out of range", date: "2024-05-01", clock: "12:00:60"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseKickoff(tc.date, tc.clock)
			if ok != tc.ok {
				t.Fatalf("unexpected ok: got=%v want=%v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if !got.Equal(tc.want) {
				t.Fatalf("unexpected kickoff: got=%s want=%s", got.UTC(), tc.want)
			}
		})
	}
}

func TestParseKickoff_UsesFixedOffset(t *testing.T) {
	t.Parallel()

	// Late March is a DST switch in most of Europe; the pool offset must not move.
	got, ok := ParseKickoff("2024-03-31", "02:30")
	if !ok {
		t.Fatalf("expected kickoff to parse")
	}
	_, offset := got.Zone()
	if offset != 3*60*60 {
		t.Fatalf("unexpected offset: got=%d want=%d", offset, 3*60*60)
	}
	if got.UTC().Hour() != 23 || got.UTC().Day() != 30 {
		t.Fatalf("unexpected utc instant: %s", got.UTC())
	}
}

func TestParseKickoff_EquivalentRepresentations(t *testing.T) {
	t.Parallel()

	dates := [][2]string{
		{"2024-05-01", "01.05.2024"},
		{"2023-12-31", "31.12.2023"},
		{"2024-02-29", "29.02.2024"},
	}
	clocks := [][2]string{
		{"15:00", "15:00:00"},
		{"00:00", "00:00:00"},
		{"23:59", "23:59:00"},
	}

	for _, d := range dates {
		for _, c := range clocks {
			a, okA := ParseKickoff(d[0], c[0])
			b, okB := ParseKickoff(d[1], c[1])
			if !okA || !okB {
				t.Fatalf("expected both to parse: %v %v", d, c)
			}
			if !a.Equal(b) {
				t.Fatalf("representations differ for %v %v: %s vs %s", d, c, a, b)
			}
		}
	}
}

func TestHasStarted(t *testing.T) {
	t.Parallel()

	m := Match{MatchDate: "2024-05-01", MatchTime: "15:00", Status: StatusUpcoming}

	before := time.Date(2024, time.May, 1, 11, 59, 0, 0, time.UTC)
	if HasStarted(before, m) {
		t.Fatalf("expected not started at 14:59 local")
	}
	if !AcceptsPredictions(before, m) {
		t.Fatalf("expected predictions to be accepted at 14:59 local")
	}

	exact := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	if !HasStarted(exact, m) {
		t.Fatalf("expected started exactly at kickoff")
	}

	after := time.Date(2024, time.May, 1, 12, 0, 1, 0, time.UTC)
	if !HasStarted(after, m) {
		t.Fatalf("expected started at 15:00:01 local")
	}
	if AcceptsPredictions(after, m) {
		t.Fatalf("expected predictions to be refused after kickoff")
	}
}

func TestHasStarted_Monotonic(t *testing.T) {
	t.Parallel()

	m := Match{MatchDate: "01.05.2024", MatchTime: "15:00:00", Status: StatusUpcoming}
	start := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

	started := false
	for i := 0; i < 6*60; i++ {
		now := start.Add(time.Duration(i) * time.Minute)
		got := HasStarted(now, m)
		if started && !got {
			t.Fatalf("gate reopened at %s", now)
		}
		started = got
	}
	if !started {
		t.Fatalf("expected gate to close within the window")
	}
}

func TestHasStarted_UnparseableFailsOpen(t *testing.T) {
	t.Parallel()

	m := Match{MatchDate: "not-a-date", MatchTime: "15:00", Status: StatusUpcoming}
	for _, now := range []time.Time{
		time.Unix(0, 0),
		time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2999, time.January, 1, 0, 0, 0, 0, time.UTC),
	} {
		if HasStarted(now, m) {
			t.Fatalf("expected unparseable kickoff to never start, now=%s", now)
		}
	}
}

func TestAcceptsPredictions_StatusGate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	for _, status := range []Status{StatusLive, StatusFinished} {
		m := Match{MatchDate: "2024-05-01", MatchTime: "15:00", Status: status}
		if AcceptsPredictions(now, m) {
			t.Fatalf("expected status %s to refuse predictions", status)
		}
	}
}

func TestNormalizeDateAndTime(t *testing.T) {
	t.Parallel()

	got, err := NormalizeDate("01.05.2024")
	if err != nil || got != "2024-05-01" {
		t.Fatalf("unexpected normalized date: got=%q err=%v", got, err)
	}
	if _, err := NormalizeDate("2024-02-30"); err != ErrDateDoesNotExist {
		t.Fatalf("expected ErrDateDoesNotExist, got %v", err)
	}
	if _, err := NormalizeDate("May 1"); err != ErrInvalidDateFormat {
		t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
	}

	clock, err := NormalizeTime("09:05")
	if err != nil || clock != "09:05:00" {
		t.Fatalf("unexpected normalized time: got=%q err=%v", clock, err)
	}
	if _, err := NormalizeTime("25:00"); err != ErrTimeOutOfRange {
		t.Fatalf("expected ErrTimeOutOfRange, got %v", err)
	}
}
