// Package aggregate computes per-category actuals for a period and reconciles them
// against budget targets.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// VarianceConvention selects how variance is derived from target and actual.
type VarianceConvention int8

const (
	// TargetMinusActual is target - actual with the signed actual, so positive
	// variance means under budget for expense categories.
	TargetMinusActual VarianceConvention = iota
	// ActualMinusTarget is the negation of TargetMinusActual.
	ActualMinusTarget
	// TargetMinusSpent is target - |actual|: the amount still available.
	TargetMinusSpent
)

func (v VarianceConvention) String() string {
	switch v {
	case ActualMinusTarget:
		return "actual-minus-target"
	case TargetMinusSpent:
		return "target-minus-spent"
	default:
		return "target-minus-actual"
	}
}

func ParseVarianceConvention(s string) (VarianceConvention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "target-minus-actual":
		return TargetMinusActual, nil
	case "actual-minus-target":
		return ActualMinusTarget, nil
	case "target-minus-spent":
		return TargetMinusSpent, nil
	default:
		return TargetMinusActual, fmt.Errorf("unknown variance convention %q", s)
	}
}

func (v VarianceConvention) apply(target, actual int64) int64 {
	switch v {
	case ActualMinusTarget:
		return actual - target
	case TargetMinusSpent:
		if actual < 0 {
			actual = -actual
		}
		return target - actual
	default:
		return target - actual
	}
}

// Options tune Compute. The zero value is the default behavior.
type Options struct {
	Variance          VarianceConvention
	OmitUncategorized bool
}

// Aggregate is the derived total of one category over one period.
type Aggregate struct {
	CategoryID uuid.UUID
	Actual     int64
	Target     int64
	HasTarget  bool
	Variance   int64
	Count      int
}

// Compute groups the transactions that occurred inside period by category and sums
// them. Every registry category gets an entry even without transactions. The
// result depends only on the set of transactions, never on their order.
func Compute(txs []ledger.Transaction, reg *ledger.Registry, period ledger.Period, opts Options) map[uuid.UUID]Aggregate {
	out := make(map[uuid.UUID]Aggregate, reg.Len()+1)
	for _, c := range reg.All() {
		out[c.ID] = Aggregate{CategoryID: c.ID}
	}

	for _, tx := range txs {
		if !period.Contains(tx.OccurredOn) {
			continue
		}
		key := tx.Bucket()
		if key == ledger.Uncategorized && opts.OmitUncategorized {
			continue
		}
		agg := out[key]
		agg.CategoryID = key
		agg.Actual += tx.Amount
		agg.Count++
		out[key] = agg
	}

	for key, agg := range out {
		if c, ok := reg.Lookup(key); ok {
			agg.Target, agg.HasTarget = c.Target()
		}
		agg.Variance = opts.Variance.apply(agg.Target, agg.Actual)
		out[key] = agg
	}
	return out
}

// Totals are the income, expense and net figures of a computed map.
type Totals struct {
	Income  int64
	Expense int64
	Net     int64
	Target  int64
}

func Sum(aggs map[uuid.UUID]Aggregate) Totals {
	var t Totals
	for _, a := range aggs {
		if a.Actual >= 0 {
			t.Income += a.Actual
		} else {
			t.Expense += a.Actual
		}
		t.Target += a.Target
	}
	t.Net = t.Income + t.Expense
	return t
}

// Sorted orders aggregates by category name with unknown categories after the
// registry ones and the uncategorized bucket last.
func Sorted(aggs map[uuid.UUID]Aggregate, reg *ledger.Registry) []Aggregate {
	out := make([]Aggregate, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, a)
	}
	rank := func(a Aggregate) (int, string) {
		if a.CategoryID == ledger.Uncategorized {
			return 2, ""
		}
		if c, ok := reg.Lookup(a.CategoryID); ok {
			return 0, c.Name
		}
		return 1, ""
	}
	sort.Slice(out, func(i, j int) bool {
		ri, ni := rank(out[i])
		rj, nj := rank(out[j])
		if ri != rj {
			return ri < rj
		}
		if ni != nj {
			return ni < nj
		}
		return out[i].CategoryID.String() < out[j].CategoryID.String()
	})
	return out
}
