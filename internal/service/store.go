package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// Store is the persistence contract of the ledger. Every call is scoped to the
// owning user. Implementations return storage.ErrNotFound for missing or deleted
// rows, storage.ErrDuplicateOccurrence when a template occurrence already exists
// and storage.ErrConflict for a stale update. Any other error is treated as a
// storage failure.
type Store interface {
	InsertTransaction(ctx context.Context, tx ledger.Transaction) error
	// UpdateTransaction writes tx only while the stored row's UpdatedAt still
	// equals prev, and returns storage.ErrConflict otherwise.
	UpdateTransaction(ctx context.Context, tx ledger.Transaction, prev time.Time) error
	DeleteTransactions(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]ledger.Transaction, error)
	FindTransaction(ctx context.Context, owner, id uuid.UUID) (*ledger.Transaction, error)
	QueryTransactions(ctx context.Context, owner uuid.UUID, start, end time.Time) ([]ledger.Transaction, error)

	QueryTemplates(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]ledger.Template, error)
	InsertTemplate(ctx context.Context, t ledger.Template) error
	SetTemplateActive(ctx context.Context, owner, id uuid.UUID, active bool) error

	QueryCategories(ctx context.Context, owner uuid.UUID) ([]ledger.Category, error)
	InsertCategory(ctx context.Context, c ledger.Category) error
	UpdateCategoryTarget(ctx context.Context, owner, id uuid.UUID, target *int64) error
}

// storeError maps a store failure onto the ledger error kinds.
func storeError(op string, err error, notFound string, args ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ledger.NewNotFoundError(notFound, args...)
	}
	return ledger.NewStorageError(op, err)
}
