package period

import (
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/aggregate"
	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// PeriodQuery selects the period containing Date.
type PeriodQuery struct {
	UserID      string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	Date        string `query:"date" required:"true" format:"date" doc:"Any day inside the requested period"`
	Granularity string `query:"granularity" enum:"day,week,month,quarter,year" default:"month" doc:"Period size; weeks start on Monday"`
}

// CategoryAggregate is the API model of one category's totals.
type CategoryAggregate struct {
	CategoryID *string `json:"categoryID,omitempty" doc:"Category UUID, absent for the uncategorized bucket"`
	Name       string  `json:"name" doc:"Category name, empty for unknown categories"`
	Kind       string  `json:"kind,omitempty" doc:"expense or income"`
	Actual     string  `json:"actual" doc:"Signed sum of the period's transactions"`
	Target     *string `json:"target,omitempty" doc:"Budget target, absent when none is set"`
	Variance   string  `json:"variance" doc:"Variance under the configured convention"`
	Count      int     `json:"count" doc:"Number of transactions"`
}

type Totals struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
	Target  string `json:"target"`
}

func parsePeriodQuery(q PeriodQuery) (uuid.UUID, ledger.Period, error) {
	user, err := apierror.UserID(q.UserID)
	if err != nil {
		return uuid.Nil, ledger.Period{}, err
	}
	date, err := apierror.Date("date", q.Date)
	if err != nil {
		return uuid.Nil, ledger.Period{}, err
	}
	g, err := ledger.ParseGranularity(q.Granularity)
	if err != nil {
		return uuid.Nil, ledger.Period{}, apierror.Invalid("granularity", err)
	}
	return user, ledger.PeriodOf(date, g), nil
}

func categoryAggregates(aggs map[uuid.UUID]aggregate.Aggregate, reg *ledger.Registry, code string) []CategoryAggregate {
	sorted := aggregate.Sorted(aggs, reg)
	out := make([]CategoryAggregate, len(sorted))
	for i, a := range sorted {
		item := CategoryAggregate{
			Actual:   currency.Decimal(a.Actual, code),
			Variance: currency.Decimal(a.Variance, code),
			Count:    a.Count,
		}
		if a.CategoryID == ledger.Uncategorized {
			item.Name = "Uncategorized"
		} else {
			item.CategoryID = apierror.FormatID(uuid.NullUUID{UUID: a.CategoryID, Valid: true})
		}
		if c, ok := reg.Lookup(a.CategoryID); ok {
			item.Name = c.Name
			item.Kind = c.Kind.String()
		}
		if a.HasTarget {
			target := currency.Decimal(a.Target, code)
			item.Target = &target
		}
		out[i] = item
	}
	return out
}

func totals(aggs map[uuid.UUID]aggregate.Aggregate, code string) Totals {
	t := aggregate.Sum(aggs)
	return Totals{
		Income:  currency.Decimal(t.Income, code),
		Expense: currency.Decimal(t.Expense, code),
		Net:     currency.Decimal(t.Net, code),
		Target:  currency.Decimal(t.Target, code),
	}
}
