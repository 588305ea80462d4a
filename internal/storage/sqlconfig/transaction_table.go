package sqlconfig

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

const transactionsTable = "transactions"

var _ ITransactionTable = (*TransactionsTable)(nil)

type TransactionsTable struct {
	exec bob.Executor
}

func NewTransactionsTable(exec bob.Executor) TransactionsTable {
	return TransactionsTable{exec: exec}
}

// Insert writes a new transaction. A second instance of the same template
// occurrence fails with ErrDuplicateOccurrence.
func (t *TransactionsTable) Insert(ctx context.Context, tx ledger.Transaction) error {
	q := psql.Insert(
		im.Into(transactionsTable, transactionColumns...),
		im.Values(psql.Arg(
			tx.ID,
			tx.UserID,
			nullUUIDArg(tx.CategoryID),
			tx.Amount,
			tx.Description,
			dateArg(tx.OccurredOn),
			nullUUIDArg(tx.TemplateID),
			nullDateArg(tx.OccurrenceDate),
			tx.CreatedAt,
			tx.UpdatedAt,
		)),
	)
	_, err := bob.Exec(ctx, t.exec, q)
	return translateError(err)
}

// Update overwrites the editable fields of a live transaction whose updated_at
// still equals prev. A row that moved on since returns ErrConflict.
func (t *TransactionsTable) Update(ctx context.Context, tx ledger.Transaction, prev time.Time) error {
	q := psql.Update(
		um.Table(transactionsTable),
		um.SetCol("category_id").ToArg(nullUUIDArg(tx.CategoryID)),
		um.SetCol("amount").ToArg(tx.Amount),
		um.SetCol("description").ToArg(tx.Description),
		um.SetCol("occurred_on").ToArg(dateArg(tx.OccurredOn)),
		um.SetCol("updated_at").ToArg(tx.UpdatedAt),
		um.Where(psql.Quote("id").EQ(psql.Arg(tx.ID))),
		um.Where(psql.Quote("user_id").EQ(psql.Arg(tx.UserID))),
		um.Where(psql.Quote("deleted_at").IsNull()),
		um.Where(psql.Quote("updated_at").EQ(psql.Arg(prev))),
	)
	res, err := bob.Exec(ctx, t.exec, q)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := t.FindByID(ctx, tx.UserID, tx.ID); err != nil {
		return err
	}
	return ErrConflict
}

// SoftDelete marks the live rows of owner among ids as deleted and returns them.
// Rows that are foreign or already deleted are left alone and not returned.
func (t *TransactionsTable) SoftDelete(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]ledger.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := psql.Update(
		um.Table(transactionsTable),
		um.SetCol("deleted_at").To(psql.Raw("NOW()")),
		um.SetCol("updated_at").To(psql.Raw("NOW()")),
		um.Where(psql.Quote("user_id").EQ(psql.Arg(owner))),
		um.Where(psql.Quote("id").In(psql.Arg(args...))),
		um.Where(psql.Quote("deleted_at").IsNull()),
		um.Returning(columns(transactionColumns)...),
	)
	rows, err := bob.All(ctx, t.exec, q, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, translateError(err)
	}
	return transactionsFromRows(rows), nil
}

// FindByID returns a live transaction of owner.
func (t *TransactionsTable) FindByID(ctx context.Context, owner, id uuid.UUID) (*ledger.Transaction, error) {
	q := psql.Select(
		sm.Columns(columns(transactionColumns)...),
		sm.From(transactionsTable),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(owner))),
		sm.Where(psql.Quote("deleted_at").IsNull()),
	)
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, translateError(err)
	}
	tx := row.toLedger()
	return &tx, nil
}

// ListBetween returns the live transactions of owner dated inside [start, end],
// ordered by date then id.
func (t *TransactionsTable) ListBetween(ctx context.Context, owner uuid.UUID, start, end time.Time) ([]ledger.Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns(transactionColumns)...),
		sm.From(transactionsTable),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(owner))),
		sm.Where(psql.Quote("deleted_at").IsNull()),
		sm.Where(psql.Quote("occurred_on").Between(psql.Arg(dateArg(start)), psql.Arg(dateArg(end)))),
		sm.OrderBy("occurred_on").Asc(),
		sm.OrderBy("id").Asc(),
	}
	rows, err := bob.All(ctx, t.exec, psql.Select(queryMods...), scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, translateError(err)
	}
	return transactionsFromRows(rows), nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
