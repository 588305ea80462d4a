package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Frequency is the unit a recurrence rule steps by.
type Frequency int8

const (
	Daily Frequency = iota
	Weekly
	Monthly
	Yearly
)

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		return fmt.Sprintf("frequency(%d)", int8(f))
	}
}

func (f Frequency) Valid() bool { return f >= Daily && f <= Yearly }

func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "yearly", "year", "annually":
		return Yearly, nil
	default:
		return Daily, NewInvalidRuleError("unknown frequency %q", s)
	}
}

// Rule describes when a template recurs. Anchor is the first occurrence.
type Rule struct {
	Frequency      Frequency
	Interval       int
	Anchor         time.Time
	EndDate        *time.Time
	MaxOccurrences int // 0 means unbounded
}

func (r Rule) Validate() error {
	if !r.Frequency.Valid() {
		return NewInvalidRuleError("unknown frequency %d", r.Frequency)
	}
	if r.Interval <= 0 {
		return NewInvalidRuleError("interval must be positive, got %d", r.Interval)
	}
	if r.Anchor.IsZero() {
		return NewInvalidRuleError("anchor date is required")
	}
	if r.EndDate != nil && DateOf(*r.EndDate).Before(DateOf(r.Anchor)) {
		return NewInvalidRuleError("end date %s is before anchor %s", DateKey(*r.EndDate), DateKey(r.Anchor))
	}
	if r.MaxOccurrences < 0 {
		return NewInvalidRuleError("max occurrences must not be negative, got %d", r.MaxOccurrences)
	}
	return nil
}

// Occurrence returns the n-th (0-based) scheduled date, computed from the anchor so
// clamped month ends do not drift.
func (r Rule) Occurrence(n int) time.Time {
	anchor := DateOf(r.Anchor)
	step := n * r.Interval
	switch r.Frequency {
	case Weekly:
		return anchor.AddDate(0, 0, 7*step)
	case Monthly:
		return AddMonthsClamped(anchor, step)
	case Yearly:
		return AddMonthsClamped(anchor, 12*step)
	default:
		return anchor.AddDate(0, 0, step)
	}
}

// Template is a recurring transaction definition.
type Template struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  uuid.NullUUID
	Amount      int64
	Description string
	Rule        Rule
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the template's own invariants; category kind is checked by the
// registry.
func (t Template) Validate() error {
	if t.UserID == uuid.Nil {
		return NewValidationError("template owner is required")
	}
	return t.Rule.Validate()
}

// Window returns the template's scheduled span; a zero end means unbounded.
func (t Template) Window() (time.Time, time.Time) {
	var end time.Time
	if t.Rule.EndDate != nil {
		end = DateOf(*t.Rule.EndDate)
	}
	if t.Rule.MaxOccurrences > 0 && t.Rule.Interval > 0 {
		last := t.Rule.Occurrence(t.Rule.MaxOccurrences - 1)
		if end.IsZero() || last.Before(end) {
			end = last
		}
	}
	return DateOf(t.Rule.Anchor), end
}
