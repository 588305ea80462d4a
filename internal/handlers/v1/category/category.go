package category

import (
	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// Category is the API response model for a category.
type Category struct {
	ID           string  `json:"id" doc:"Category UUID"`
	Name         string  `json:"name" doc:"Category name"`
	Kind         string  `json:"kind" enum:"expense,income" doc:"expense categories take amounts <= 0, income categories amounts >= 0"`
	BudgetTarget *string `json:"budgetTarget,omitempty" doc:"Per-period budget target, absent when none is set"`
}

func fromLedger(c ledger.Category, code string) Category {
	out := Category{
		ID:   c.ID.String(),
		Name: c.Name,
		Kind: c.Kind.String(),
	}
	if target, ok := c.Target(); ok {
		s := currency.Decimal(target, code)
		out.BudgetTarget = &s
	}
	return out
}
