package models

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used by every record.
const DateLayout = "2006-01-02"

// YearOf extracts the calendar year from a YYYY-MM-DD string without going
// through a timezone. It reports false when no year can be read.
func YearOf(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(head)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

// ParseDate parses a record date, tolerating a trailing time component.
func ParseDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if len(date) > len(DateLayout) {
		date = date[:len(DateLayout)]
	}
	return time.Parse(DateLayout, date)
}

// AddYears shifts a record date by n years. Unparsable input yields "".
func AddYears(date string, n int) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return t.AddDate(n, 0, 0).Format(DateLayout)
}
