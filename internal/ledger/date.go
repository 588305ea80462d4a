package ledger

import (
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 calendar date layout used for keys and the wire.
const DateFormat = "2006-01-02"

// DateOf truncates t to its calendar day at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date returns the normalized date for the given year, month and day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a 2006-01-02 date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q want format %q: %w", s, DateFormat, err)
	}
	return t, nil
}

// DateKey renders the calendar day of t.
func DateKey(t time.Time) string { return t.Format(DateFormat) }

// DateSet is a set of calendar days, independent of location and clock time.
type DateSet map[string]struct{}

func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s DateSet) Add(d time.Time) { s[DateKey(d)] = struct{}{} }

func (s DateSet) Has(d time.Time) bool {
	_, ok := s[DateKey(d)]
	return ok
}

// daysIn returns the number of days of the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped moves d by n months, keeping its day of month but clamping it to
// the last day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(d time.Time, n int) time.Time {
	total := int(d.Month()) - 1 + n
	year := d.Year() + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	day := d.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return Date(year, month, day)
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// MonthsBetween returns the number of calendar month boundaries from a to b,
// ignoring the day of month.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
