package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/storage/sqlconfig"
)

// Storage is the Postgres-backed ledger store.
type Storage struct {
	DB           *sql.DB
	Categories   sqlconfig.CategoriesTable
	Templates    sqlconfig.TemplatesTable
	Transactions sqlconfig.TransactionsTable
}

func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", env.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return NewStorageFromDB(db), nil
}

func NewStorageFromDB(db *sql.DB) *Storage {
	exec := bob.NewDB(db)
	return &Storage{
		DB:           db,
		Categories:   sqlconfig.NewCategoriesTable(exec),
		Templates:    sqlconfig.NewTemplatesTable(exec),
		Transactions: sqlconfig.NewTransactionsTable(exec),
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) InsertTransaction(ctx context.Context, tx ledger.Transaction) error {
	return s.Transactions.Insert(ctx, tx)
}

func (s *Storage) UpdateTransaction(ctx context.Context, tx ledger.Transaction, prev time.Time) error {
	return s.Transactions.Update(ctx, tx, prev)
}

func (s *Storage) DeleteTransactions(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]ledger.Transaction, error) {
	return s.Transactions.SoftDelete(ctx, owner, ids)
}

func (s *Storage) FindTransaction(ctx context.Context, owner, id uuid.UUID) (*ledger.Transaction, error) {
	return s.Transactions.FindByID(ctx, owner, id)
}

func (s *Storage) QueryTransactions(ctx context.Context, owner uuid.UUID, start, end time.Time) ([]ledger.Transaction, error) {
	return s.Transactions.ListBetween(ctx, owner, start, end)
}

func (s *Storage) QueryTemplates(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]ledger.Template, error) {
	return s.Templates.List(ctx, owner, activeOnly)
}

func (s *Storage) InsertTemplate(ctx context.Context, t ledger.Template) error {
	return s.Templates.Insert(ctx, t)
}

func (s *Storage) SetTemplateActive(ctx context.Context, owner, id uuid.UUID, active bool) error {
	return s.Templates.SetActive(ctx, owner, id, active)
}

func (s *Storage) QueryCategories(ctx context.Context, owner uuid.UUID) ([]ledger.Category, error) {
	return s.Categories.List(ctx, owner)
}

func (s *Storage) InsertCategory(ctx context.Context, c ledger.Category) error {
	return s.Categories.Insert(ctx, c)
}

func (s *Storage) UpdateCategoryTarget(ctx context.Context, owner, id uuid.UUID, target *int64) error {
	return s.Categories.UpdateTarget(ctx, owner, id, target)
}
