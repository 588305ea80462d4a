package sqlconfig

import (
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// Row structs mirror the table layout; scan.StructMapper matches them by db tag.

type categoryRow struct {
	ID           uuid.UUID     `db:"id"`
	UserID       uuid.UUID     `db:"user_id"`
	Name         string        `db:"name"`
	Kind         int16         `db:"kind"`
	BudgetTarget sql.NullInt64 `db:"budget_target"`
	CreatedAt    time.Time     `db:"created_at"`
}

var categoryColumns = []string{"id", "user_id", "name", "kind", "budget_target", "created_at"}

func (r categoryRow) toLedger() ledger.Category {
	c := ledger.Category{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Kind:      ledger.Kind(r.Kind),
		CreatedAt: r.CreatedAt,
	}
	if r.BudgetTarget.Valid {
		v := r.BudgetTarget.Int64
		c.BudgetTarget = &v
	}
	return c
}

type templateRow struct {
	ID             uuid.UUID     `db:"id"`
	UserID         uuid.UUID     `db:"user_id"`
	CategoryID     uuid.NullUUID `db:"category_id"`
	Amount         int64         `db:"amount"`
	Description    string        `db:"description"`
	Frequency      int16         `db:"frequency"`
	IntervalCount  int32         `db:"interval_count"`
	AnchorDate     time.Time     `db:"anchor_date"`
	EndDate        sql.NullTime  `db:"end_date"`
	MaxOccurrences int32         `db:"max_occurrences"`
	Active         bool          `db:"active"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

var templateColumns = []string{
	"id", "user_id", "category_id", "amount", "description", "frequency", "interval_count",
	"anchor_date", "end_date", "max_occurrences", "active", "created_at", "updated_at",
}

func (r templateRow) toLedger() ledger.Template {
	t := ledger.Template{
		ID:          r.ID,
		UserID:      r.UserID,
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		Description: r.Description,
		Rule: ledger.Rule{
			Frequency:      ledger.Frequency(r.Frequency),
			Interval:       int(r.IntervalCount),
			Anchor:         ledger.DateOf(r.AnchorDate),
			MaxOccurrences: int(r.MaxOccurrences),
		},
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.EndDate.Valid {
		end := ledger.DateOf(r.EndDate.Time)
		t.Rule.EndDate = &end
	}
	return t
}

type transactionRow struct {
	ID             uuid.UUID     `db:"id"`
	UserID         uuid.UUID     `db:"user_id"`
	CategoryID     uuid.NullUUID `db:"category_id"`
	Amount         int64         `db:"amount"`
	Description    string        `db:"description"`
	OccurredOn     time.Time     `db:"occurred_on"`
	TemplateID     uuid.NullUUID `db:"template_id"`
	OccurrenceDate sql.NullTime  `db:"occurrence_date"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

var transactionColumns = []string{
	"id", "user_id", "category_id", "amount", "description", "occurred_on",
	"template_id", "occurrence_date", "created_at", "updated_at",
}

func (r transactionRow) toLedger() ledger.Transaction {
	t := ledger.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		Description: r.Description,
		OccurredOn:  ledger.DateOf(r.OccurredOn),
		TemplateID:  r.TemplateID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.OccurrenceDate.Valid {
		d := ledger.DateOf(r.OccurrenceDate.Time)
		t.OccurrenceDate = &d
	}
	return t
}

func transactionsFromRows(rows []transactionRow) []ledger.Transaction {
	out := make([]ledger.Transaction, len(rows))
	for i, row := range rows {
		out[i] = row.toLedger()
	}
	return out
}

// dateArg renders a calendar date as text so the server never shifts it through
// the session time zone.
func dateArg(d time.Time) string {
	return ledger.DateKey(d)
}

func nullDateArg(d *time.Time) any {
	if d == nil {
		return nil
	}
	return dateArg(*d)
}

func nullUUIDArg(id uuid.NullUUID) any {
	if !id.Valid {
		return nil
	}
	return id.UUID
}
