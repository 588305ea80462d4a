package service

import (
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/aggregate"
	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// PeriodView is a fully materialized period with its aggregates.
type PeriodView struct {
	Period       ledger.Period
	Aggregates   map[uuid.UUID]aggregate.Aggregate
	Transactions []ledger.Transaction
	Registry     *ledger.Registry
}

// Summary is the aggregates-only view of a period.
type Summary struct {
	Period     ledger.Period
	Aggregates map[uuid.UUID]aggregate.Aggregate
	Totals     aggregate.Totals
	Registry   *ledger.Registry
	Cached     bool
}

// TransactionPatch lists the fields an edit changes. Unset fields keep their value;
// a null CategoryID clears the category.
type TransactionPatch struct {
	CategoryID  omitnull.Val[uuid.UUID]
	Amount      omit.Val[int64]
	Description omit.Val[string]
	OccurredOn  omit.Val[time.Time]
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.CategoryID.IsUnset() && p.Amount.IsUnset() && p.Description.IsUnset() && p.OccurredOn.IsUnset()
}

// Apply returns tx with the patch applied.
func (p TransactionPatch) Apply(tx ledger.Transaction) ledger.Transaction {
	switch {
	case p.CategoryID.IsNull():
		tx.CategoryID = uuid.NullUUID{}
	case p.CategoryID.IsValue():
		id, _ := p.CategoryID.Get()
		tx.CategoryID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if v, ok := p.Amount.Get(); ok {
		tx.Amount = v
	}
	if v, ok := p.Description.Get(); ok {
		tx.Description = v
	}
	if v, ok := p.OccurredOn.Get(); ok {
		tx.OccurredOn = ledger.DateOf(v)
	}
	return tx
}

// Edit is one item of a bulk edit.
type Edit struct {
	ID    uuid.UUID
	Patch TransactionPatch
}

// EditFailure records why one bulk edit item was not applied.
type EditFailure struct {
	Index   int // position in the submitted edits
	ID      uuid.UUID
	Kind    ledger.ErrorKind
	Message string
}

// BulkEditResult reports the outcome of every item of a bulk edit.
type BulkEditResult struct {
	Applied  int
	Failures []EditFailure
	Updated  []ledger.Transaction
}

// NewTransaction is a manually entered transaction.
type NewTransaction struct {
	CategoryID  uuid.NullUUID
	Amount      int64
	Description string
	OccurredOn  time.Time
}

// NewCategory describes a category to create.
type NewCategory struct {
	Name         string
	Kind         ledger.Kind
	BudgetTarget *int64
}

// NewTemplate describes a recurring template to create.
type NewTemplate struct {
	CategoryID  uuid.NullUUID
	Amount      int64
	Description string
	Rule        ledger.Rule
}
