package sqlconfig

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// ITransactionTable defines the storage operations on the transactions table.
// Every read and write is scoped to the owning user.
type ITransactionTable interface {
	Insert(ctx context.Context, tx ledger.Transaction) error
	Update(ctx context.Context, tx ledger.Transaction, prev time.Time) error
	SoftDelete(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]ledger.Transaction, error)
	FindByID(ctx context.Context, owner, id uuid.UUID) (*ledger.Transaction, error)
	ListBetween(ctx context.Context, owner uuid.UUID, start, end time.Time) ([]ledger.Transaction, error)
}

// ITemplateTable defines the storage operations on the recurring_templates table.
type ITemplateTable interface {
	Insert(ctx context.Context, t ledger.Template) error
	List(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]ledger.Template, error)
	SetActive(ctx context.Context, owner, id uuid.UUID, active bool) error
}

// ICategoryTable defines the storage operations on the categories table.
type ICategoryTable interface {
	Insert(ctx context.Context, c ledger.Category) error
	List(ctx context.Context, owner uuid.UUID) ([]ledger.Category, error)
	UpdateTarget(ctx context.Context, owner, id uuid.UUID, target *int64) error
}

func columns(names []string) []any {
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}
