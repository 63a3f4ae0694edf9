package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf returns the calendar day of t as UTC midnight. The day is taken in
// t's own location so time-of-day never moves a date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q must be formatted as %s", ErrInvalidDate, s, DateLayout)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}
