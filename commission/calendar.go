package commission

import (
	"fmt"
	"time"
)

// =============================================================================
// CALENDAR ARITHMETIC - month steps with end-of-month clamping
// =============================================================================

const (
	dateLayout     = "2006-01-02"
	dueMonthLayout = "2006-01"
)

// AddMonths adds n calendar months to t in UTC. When the target month is
// shorter than t's day of month, the day is clamped to the target month's
// last day: Jan 31 + 1 month is Feb 28 (or 29), never Mar 2.
//
// time.Time.AddDate normalizes overflow into the following month, which is
// exactly what this function must not do.
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := t.Day()
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DueMonth returns the YYYY-MM bucket of t, i.e. the first seven characters
// of its UTC RFC 3339 form.
func DueMonth(t time.Time) string {
	return t.UTC().Format(dueMonthLayout)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate accepts a plain YYYY-MM-DD date (UTC midnight) or an RFC 3339
// instant.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return t.UTC(), nil
}

// ParseMonth validates a YYYY-MM due-month key.
func ParseMonth(s string) (string, error) {
	t, err := time.Parse(dueMonthLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid month %q (use YYYY-MM): %w", s, err)
	}
	return t.Format(dueMonthLayout), nil
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
