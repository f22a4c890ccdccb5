package match

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Moscow is the pool's reference zone. It is a fixed UTC+3 offset on purpose:
// kickoff times are entered as Moscow wall-clock time and no DST applies.
var Moscow = time.FixedZone("MSK", 3*60*60)

var (
	isoDatePattern    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dottedDatePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	clockPattern      = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2}))?$`)
)

// fallbackDateLayouts are tried in order when the date matches neither stored shape.
var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006-1-2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
}

type calendarDate struct {
	year  int
	month time.Month
	day   int
}

// ParseKickoff turns the stored date and time strings into an absolute instant
// in the Moscow offset. It reports false when either part cannot be parsed.
func ParseKickoff(date, clock string) (time.Time, bool) {
	day, ok := parseDate(date)
	if !ok {
		return time.Time{}, false
	}
	hour, minute, second, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}

	return time.Date(day.year, day.month, day.day, hour, minute, second, 0, Moscow), true
}

// Kickoff is ParseKickoff over the match fields.
func Kickoff(m Match) (time.Time, bool) {
	return ParseKickoff(m.MatchDate, m.MatchTime)
}

// HasStarted reports whether now is at or past kickoff. Unparseable kickoffs
// count as not started so prediction entry stays open.
func HasStarted(now time.Time, m Match) bool {
	kickoff, ok := Kickoff(m)
	if !ok {
		return false
	}
	return !now.Before(kickoff)
}

// AcceptsPredictions combines the clock gate with the status gate.
func AcceptsPredictions(now time.Time, m Match) bool {
	return m.Status == StatusUpcoming && !HasStarted(now, m)
}

// NormalizeDate rewrites DD.MM.YYYY or YYYY-MM-DD into YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	var (
		day calendarDate
		ok  bool
	)
	switch {
	case isoDatePattern.MatchString(value), dottedDatePattern.MatchString(value):
		day, ok = parseStoredDate(value)
		if !ok {
			return "", ErrDateDoesNotExist
		}
	default:
		return "", ErrInvalidDateFormat
	}

	return time.Date(day.year, day.month, day.day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly), nil
}

// NormalizeTime rewrites HH:MM or HH:MM:SS into HH:MM:SS.
func NormalizeTime(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if !clockPattern.MatchString(value) {
		return "", ErrInvalidTimeFormat
	}
	hour, minute, second, ok := parseClock(value)
	if !ok {
		return "", ErrTimeOutOfRange
	}

	return time.Date(2000, time.January, 1, hour, minute, second, 0, time.UTC).Format(time.TimeOnly), nil
}

func parseDate(raw string) (calendarDate, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return calendarDate{}, false
	}
	if isoDatePattern.MatchString(value) || dottedDatePattern.MatchString(value) {
		return parseStoredDate(value)
	}

	for _, layout := range fallbackDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return calendarDate{year: parsed.Year(), month: parsed.Month(), day: parsed.Day()}, true
	}

	return calendarDate{}, false
}

func parseStoredDate(value string) (calendarDate, bool) {
	if m := isoDatePattern.FindStringSubmatch(value); m != nil {
		return newCalendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := dottedDatePattern.FindStringSubmatch(value); m != nil {
		return newCalendarDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	return calendarDate{}, false
}

func newCalendarDate(year, month, day int) (calendarDate, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return calendarDate{}, false
	}

	// time.Date normalizes overflow (Feb 30 -> Mar 1); reject anything it moved.
	probe := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if probe.Year() != year || probe.Month() != time.Month(month) || probe.Day() != day {
		return calendarDate{}, false
	}

	return calendarDate{year: year, month: time.Month(month), day: day}, true
}

func parseClock(raw string) (int, int, int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, 0, false
	}

	hour := atoi(m[1])
	minute := atoi(m[2])
	second := 0
	if m[3] != "" {
		second = atoi(m[3])
	}
	if hour > 23 || minute > 59 || second > 59 {
		return 0, 0, 0, false
	}

	return hour, minute, second, true
}

func atoi(digits string) int {
	v, _ := strconv.Atoi(digits)
	return v
}
