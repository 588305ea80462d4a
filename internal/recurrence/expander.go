// Package recurrence turns recurring templates into the concrete occurrence dates
// that should exist inside a window. It never touches storage: materializing a date
// into a transaction is the coordinator's job, which keeps expansion idempotent.
package recurrence

import (
	"iter"
	"time"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

func empty(func(time.Time) bool) {}

// Expand returns the ascending occurrence dates of t inside [windowStart, windowEnd]
// that are not already in existing. The sequence is lazy and finite, so callers that
// only need the next date can stop after the first value.
func Expand(t ledger.Template, windowStart, windowEnd time.Time, existing ledger.DateSet) (iter.Seq[time.Time], error) {
	windowStart, windowEnd = ledger.DateOf(windowStart), ledger.DateOf(windowEnd)
	if windowStart.After(windowEnd) {
		return nil, ledger.NewValidationError("window start %s is after window end %s",
			ledger.DateKey(windowStart), ledger.DateKey(windowEnd))
	}
	if err := t.Rule.Validate(); err != nil {
		return nil, err
	}
	if !t.Active {
		return empty, nil
	}

	rule := t.Rule
	lower, upper := bounds(rule, windowStart, windowEnd)
	if lower.After(upper) {
		return empty, nil
	}

	start := firstIndex(rule, lower)
	return func(yield func(time.Time) bool) {
		for n := start; rule.MaxOccurrences == 0 || n < rule.MaxOccurrences; n++ {
			d := rule.Occurrence(n)
			if d.After(upper) {
				return
			}
			if existing.Has(d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}, nil
}

// Next returns the first occurrence of t on or after from.
func Next(t ledger.Template, from time.Time) (time.Time, bool, error) {
	if err := t.Rule.Validate(); err != nil {
		return time.Time{}, false, err
	}
	if !t.Active {
		return time.Time{}, false, nil
	}
	rule := t.Rule
	from = ledger.DateOf(from)
	if anchor := ledger.DateOf(rule.Anchor); anchor.After(from) {
		from = anchor
	}
	n := firstIndex(rule, from)
	if rule.MaxOccurrences > 0 && n >= rule.MaxOccurrences {
		return time.Time{}, false, nil
	}
	d := rule.Occurrence(n)
	if rule.EndDate != nil && d.After(ledger.DateOf(*rule.EndDate)) {
		return time.Time{}, false, nil
	}
	return d, true, nil
}

// bounds clips the window to the rule's anchor and end date.
func bounds(rule ledger.Rule, windowStart, windowEnd time.Time) (time.Time, time.Time) {
	lower, upper := windowStart, windowEnd
	if anchor := ledger.DateOf(rule.Anchor); anchor.After(lower) {
		lower = anchor
	}
	if rule.EndDate != nil {
		if end := ledger.DateOf(*rule.EndDate); end.Before(upper) {
			upper = end
		}
	}
	return lower, upper
}

// firstIndex returns the smallest n with Occurrence(n) on or after from. The
// estimate is arithmetic so old templates do not replay their whole history.
func firstIndex(rule ledger.Rule, from time.Time) int {
	anchor := ledger.DateOf(rule.Anchor)
	if !from.After(anchor) {
		return 0
	}

	var n int
	switch rule.Frequency {
	case ledger.Weekly:
		n = ledger.DaysBetween(anchor, from) / (7 * rule.Interval)
	case ledger.Monthly:
		n = ledger.MonthsBetween(anchor, from) / rule.Interval
	case ledger.Yearly:
		n = ledger.MonthsBetween(anchor, from) / (12 * rule.Interval)
	default:
		n = ledger.DaysBetween(anchor, from) / rule.Interval
	}
	if n < 0 {
		n = 0
	}
	for n > 0 && !rule.Occurrence(n-1).Before(from) {
		n--
	}
	for rule.Occurrence(n).Before(from) {
		n++
	}
	return n
}
