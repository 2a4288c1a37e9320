package validation

import (
	"fmt"

	"climate-api/internal/dates"
)

// OutOfRangeError is returned when a date lies outside the dataset bounds.
// Min and Max are the live bounds the date was checked against.
type OutOfRangeError struct {
	Date string
	Min  string
	Max  string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("Start must be between %s and %s.", e.Min, e.Max)
}

// IsTransient returns false as the dataset bounds do not move between retries
func (e *OutOfRangeError) IsTransient() bool {
	return false
}

// IsValidDate reports whether text parses as a YYYY-MM-DD calendar date.
// The parse failure itself is dropped; callers only get a yes/no answer.
func IsValidDate(text string) bool {
	_, err := dates.ParseDate(text)
	return err == nil
}

// InRange checks text against the inclusive [minDate, maxDate] bounds using
// ISO string ordering.
func InRange(text, minDate, maxDate string) error {
	if text < minDate || text > maxDate {
		return &OutOfRangeError{
			Date: text,
			Min:  minDate,
			Max:  maxDate,
		}
	}
	return nil
}
