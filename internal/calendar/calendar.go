// Package calendar reduces the date values found on crew logs and T&M tags
// to a single calendar-day key.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the canonical calendar-day format.
const DayLayout = "2006-01-02"

// ErrUnparseable is returned when a value has no recognisable calendar day.
var ErrUnparseable = errors.New("unparseable calendar day")

// Normalize returns the YYYY-MM-DD calendar day of v.
//
// Strings may be bare dates, ISO-8601 timestamps, or any text that starts
// with a valid YYYY-MM-DD; only that prefix is kept. time.Time values keep
// their own calendar day, no timezone conversion is applied.
func Normalize(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return normalizeString(val)
	case *string:
		if val == nil {
			return "", ErrUnparseable
		}
		return normalizeString(*val)
	case time.Time:
		if val.IsZero() {
			return "", ErrUnparseable
		}
		return val.Format(DayLayout), nil
	case *time.Time:
		if val == nil || val.IsZero() {
			return "", ErrUnparseable
		}
		return val.Format(DayLayout), nil
	case nil:
		return "", ErrUnparseable
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrUnparseable, v)
	}
}

func normalizeString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(DayLayout) {
		return "", fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	prefix := s[:len(DayLayout)]
	if _, err := time.Parse(DayLayout, prefix); err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	return prefix, nil
}

// Prefix returns a SQL LIKE pattern matching values that start with day.
func Prefix(day string) string {
	return day + "%"
}
