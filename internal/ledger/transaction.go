package ledger

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Uncategorized is the reserved bucket key for transactions without a category.
var Uncategorized = uuid.Nil

// Transaction is a single dated ledger entry. Amount is a signed minor-unit integer:
// negative for spending, positive for income.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  uuid.NullUUID
	Amount      int64
	Description string
	OccurredOn  time.Time

	// Set only on instances materialized from a recurring template.
	TemplateID     uuid.NullUUID
	OccurrenceDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Bucket returns the aggregation key of the transaction.
func (t Transaction) Bucket() uuid.UUID {
	if !t.CategoryID.Valid {
		return Uncategorized
	}
	return t.CategoryID.UUID
}

// Validate checks the invariants that do not need the category registry.
func (t Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return NewValidationError("transaction owner is required")
	}
	if t.OccurredOn.IsZero() {
		return NewValidationError("transaction date is required")
	}
	if t.TemplateID.Valid != (t.OccurrenceDate != nil) {
		return NewValidationError("template id and occurrence date must be set together")
	}
	return nil
}

// NewInstance builds the transaction a template produces for one occurrence.
func NewInstance(id uuid.UUID, tpl Template, occurrence time.Time) Transaction {
	on := DateOf(occurrence)
	return Transaction{
		ID:             id,
		UserID:         tpl.UserID,
		CategoryID:     tpl.CategoryID,
		Amount:         tpl.Amount,
		Description:    tpl.Description,
		OccurredOn:     on,
		TemplateID:     uuid.NullUUID{UUID: tpl.ID, Valid: true},
		OccurrenceDate: &on,
	}
}
