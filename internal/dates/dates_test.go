package dates

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    time.Time
		wantErr bool
	}{
		{name: "valid date", text: "2017-01-15", want: time.Date(2017, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "leap day", text: "2016-02-29", want: time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "dataset start", text: "2010-01-01", want: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "february 30", text: "2017-02-30", wantErr: true},
		{name: "non-leap february 29", text: "2017-02-29", wantErr: true},
		{name: "month 13", text: "2017-13-01", wantErr: true},
		{name: "day 32", text: "2017-01-32", wantErr: true},
		{name: "single digit month", text: "2017-1-15", wantErr: true},
		{name: "signed year", text: "+017-01-15", wantErr: true},
		{name: "trailing text", text: "2017-01-15x", wantErr: true},
		{name: "letters", text: "not-a-date", wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.text)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}

			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("ParseDate(%q) error type = %T, want *ParseError", tt.text, err)
				}
				return
			}

			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestParseDate_RoundTrip walks every day over several years, including leap years
func TestParseDate_RoundTrip(t *testing.T) {
	day := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2017, 12, 31, 0, 0, 0, 0, time.UTC)

	for !day.After(end) {
		text := fmt.Sprintf("%04d-%02d-%02d", day.Year(), int(day.Month()), day.Day())

		parsed, err := ParseDate(text)
		if err != nil {
			t.Fatalf("ParseDate(%q) error = %v", text, err)
		}

		rebuilt := fmt.Sprintf("%04d-%02d-%02d", parsed.Year(), int(parsed.Month()), parsed.Day())
		if rebuilt != text {
			t.Fatalf("round trip of %q = %q", text, rebuilt)
		}

		day = day.AddDate(0, 0, 1)
	}
}

func TestOneYearBefore(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{date: "2017-08-23", want: "2016-08-23"},
		// 2016 is a leap year, so 365 days back from a date after Feb 29 lands a day later
		{date: "2016-08-23", want: "2015-08-24"},
		{date: "2016-03-01", want: "2015-03-02"},
		{date: "2017-01-01", want: "2016-01-02"},
		{date: "2010-01-01", want: "2009-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			date, err := ParseDate(tt.date)
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.date, err)
			}

			if got := OneYearBefore(date); got != tt.want {
				t.Errorf("OneYearBefore(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestOneYearBefore_IsExactly365Days(t *testing.T) {
	day := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2000; i++ {
		floor, err := ParseDate(OneYearBefore(day))
		if err != nil {
			t.Fatalf("OneYearBefore(%s) produced unparseable date: %v", Format(day), err)
		}

		if gap := day.Sub(floor); gap != 365*24*time.Hour {
			t.Fatalf("OneYearBefore(%s) gap = %v, want 365 days", Format(day), gap)
		}

		day = day.AddDate(0, 0, 1)
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{Text: "2017-02-30", Reason: "day out of range"}

	want := `parse date "2017-02-30": day out of range`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}
