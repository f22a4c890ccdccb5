package match

import (
	"errors"
	"strings"
)

var (
	ErrInvalidDateFormat = errors.New("date must use YYYY-MM-DD format")
	ErrDateDoesNotExist  = errors.New("date does not exist")
	ErrInvalidTimeFormat = errors.New("time must use HH:MM format")
	ErrTimeOutOfRange    = errors.New("time is out of range")
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failing field of one match write.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, item := range e {
		parts = append(parts, item.Error())
	}
	return strings.Join(parts, "; ")
}

// ValidateDateInput checks an administrator-entered date. Only YYYY-MM-DD is
// accepted from the admin form, and it must be a real calendar date.
func ValidateDateInput(raw string) error {
	value := strings.TrimSpace(raw)
	if !isoDatePattern.MatchString(value) {
		return ErrInvalidDateFormat
	}
	if _, ok := parseStoredDate(value); !ok {
		return ErrDateDoesNotExist
	}
	return nil
}

// ValidateTimeInput checks an administrator-entered time. HH:MM:SS is only
// accepted when allowSeconds is set (editing a stored value).
func ValidateTimeInput(raw string, allowSeconds bool) error {
	value := strings.TrimSpace(raw)
	m := clockPattern.FindStringSubmatch(value)
	if m == nil || (m[3] != "" && !allowSeconds) {
		return ErrInvalidTimeFormat
	}
	if atoi(m[1]) > 23 {
		return errors.New("hours must be between 00 and 23")
	}
	if atoi(m[2]) > 59 {
		return errors.New("minutes must be between 00 and 59")
	}
	if m[3] != "" && atoi(m[3]) > 59 {
		return errors.New("seconds must be between 00 and 59")
	}
	return nil
}

// Validate checks the stored-record invariants of a match.
func Validate(m Match) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(m.HomeTeam) == "" {
		errs = append(errs, FieldError{Field: "home_team", Message: "home team is required"})
	}
	if strings.TrimSpace(m.AwayTeam) == "" {
		errs = append(errs, FieldError{Field: "away_team", Message: "away team is required"})
	}
	if _, ok := ParseStatus(string(m.Status)); !ok {
		errs = append(errs, FieldError{Field: "status", Message: "status must be upcoming, live or finished"})
	}
	if m.Tour != nil && *m.Tour <= 0 {
		errs = append(errs, FieldError{Field: "tour", Message: "tour must be greater than 0"})
	}

	hasHome, hasAway := m.HomeScore != nil, m.AwayScore != nil
	switch {
	case hasHome != hasAway:
		errs = append(errs, FieldError{Field: "home_score", Message: "home and away scores must be set together"})
	case hasHome && m.Status != StatusFinished:
		errs = append(errs, FieldError{Field: "status", Message: "scores can only be set on a finished match"})
	case hasHome && (*m.HomeScore < 0 || *m.AwayScore < 0):
		errs = append(errs, FieldError{Field: "home_score", Message: "scores must not be negative"})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
