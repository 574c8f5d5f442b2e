// Package dateutil formats and checks the calendar dates used to query
// historical rates.
package dateutil

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Layout is the wire and storage format of a rate date.
const Layout = "2006-01-02"

// Format renders the local calendar day of t as YYYY-MM-DD.
// The zero time renders as the empty string.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return civil.DateOf(t.Local()).String()
}

// IsSelectable reports whether t falls on a day strictly before today.
func IsSelectable(t time.Time) bool {
	return IsSelectableAt(t, time.Now())
}

// IsSelectableAt is IsSelectable with an explicit clock.
// Both instants are compared as local calendar days; t is never modified.
func IsSelectableAt(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	return civil.DateOf(t.Local()).Before(civil.DateOf(now.Local()))
}

// Parse reads a YYYY-MM-DD string into local midnight of that day.
func Parse(s string) (time.Time, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if !d.IsValid() {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d.In(time.Local), nil
}
