package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the size of an aggregation period.
type Granularity int8

const (
	Day Granularity = iota
	Week
	Month
	Quarter
	Year
)

func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	default:
		return fmt.Sprintf("granularity(%d)", int8(g))
	}
}

func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly", "":
		return Month, nil
	case "quarter", "quarterly":
		return Quarter, nil
	case "year", "yearly":
		return Year, nil
	default:
		return Month, NewValidationError("unknown granularity %q", s)
	}
}

// Period is a contiguous, inclusive range of calendar days used as an aggregation
// boundary. It is never persisted.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds an arbitrary period; start must not be after end.
func NewPeriod(start, end time.Time) (Period, error) {
	start, end = DateOf(start), DateOf(end)
	if start.After(end) {
		return Period{}, NewValidationError("period start %s is after end %s", DateKey(start), DateKey(end))
	}
	return Period{Start: start, End: end}, nil
}

// PeriodOf returns the period of the given granularity containing ref.
func PeriodOf(ref time.Time, g Granularity) Period {
	ref = DateOf(ref)
	switch g {
	case Day:
		return Period{Start: ref, End: ref}
	case Week:
		offset := (int(ref.Weekday()) + 6) % 7 // Monday is the first day
		start := ref.AddDate(0, 0, -offset)
		return Period{Start: start, End: start.AddDate(0, 0, 6)}
	case Quarter:
		first := time.Month((int(ref.Month())-1)/3*3 + 1)
		start := Date(ref.Year(), first, 1)
		return Period{Start: start, End: start.AddDate(0, 3, -1)}
	case Year:
		return Period{Start: Date(ref.Year(), time.January, 1), End: Date(ref.Year(), time.December, 31)}
	default:
		start := Date(ref.Year(), ref.Month(), 1)
		return Period{Start: start, End: start.AddDate(0, 1, -1)}
	}
}

// Contains reports whether the day of d falls within the period, bounds included.
func (p Period) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Overlaps reports whether [start, end] intersects the period. A zero end means
// unbounded.
func (p Period) Overlaps(start time.Time, end time.Time) bool {
	if DateOf(start).After(p.End) {
		return false
	}
	if !end.IsZero() && DateOf(end).Before(p.Start) {
		return false
	}
	return true
}

// Key identifies the period in caches and logs.
func (p Period) Key() string { return DateKey(p.Start) + ".." + DateKey(p.End) }

func (p Period) String() string { return p.Key() }
