// Package dates holds the calendar-date helpers shared by validation,
// services and the ingester. Dates travel as "YYYY-MM-DD" strings.
package dates

import (
	"fmt"
	"time"
)

// Layout is the wire and storage format for measurement dates
const Layout = "2006-01-02"

// trailingWindowDays is the length of the trailing temperature window.
// It is a fixed day count, not a calendar year.
const trailingWindowDays = 365

// ParseError reports a string that is not a valid calendar date
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %s", e.Text, e.Reason)
}

// ParseDate interprets text as a "YYYY-MM-DD" calendar date in UTC.
// Month and day must be two digits and form a real date (no 2017-02-30).
func ParseDate(text string) (time.Time, error) {
	if len(text) != len(Layout) {
		return time.Time{}, &ParseError{Text: text, Reason: "expected YYYY-MM-DD"}
	}
	for i := 0; i < len(text); i++ {
		if i == 4 || i == 7 {
			continue
		}
		// time.Parse accepts a signed year, the wire format does not
		if text[i] < '0' || text[i] > '9' {
			return time.Time{}, &ParseError{Text: text, Reason: "non-numeric segment"}
		}
	}

	date, err := time.Parse(Layout, text)
	if err != nil {
		return time.Time{}, &ParseError{Text: text, Reason: err.Error()}
	}

	return date, nil
}

// Format renders a date in the wire format
func Format(date time.Time) string {
	return date.Format(Layout)
}

// OneYearBefore returns the date exactly 365 days before date.
// Leap days are not special-cased.
func OneYearBefore(date time.Time) string {
	return Format(date.AddDate(0, 0, -trailingWindowDays))
}
