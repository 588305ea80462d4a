package sqlconfig

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

const categoriesTable = "categories"

var _ ICategoryTable = (*CategoriesTable)(nil)

type CategoriesTable struct {
	exec bob.Executor
}

func NewCategoriesTable(exec bob.Executor) CategoriesTable {
	return CategoriesTable{exec: exec}
}

func (t *CategoriesTable) Insert(ctx context.Context, c ledger.Category) error {
	var target any
	if c.BudgetTarget != nil {
		target = *c.BudgetTarget
	}
	q := psql.Insert(
		im.Into(categoriesTable, categoryColumns...),
		im.Values(psql.Arg(c.ID, c.UserID, c.Name, int16(c.Kind), target, c.CreatedAt)),
	)
	_, err := bob.Exec(ctx, t.exec, q)
	return translateError(err)
}

func (t *CategoriesTable) List(ctx context.Context, owner uuid.UUID) ([]ledger.Category, error) {
	q := psql.Select(
		sm.Columns(columns(categoryColumns)...),
		sm.From(categoriesTable),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(owner))),
		sm.OrderBy("name").Asc(),
	)
	rows, err := bob.All(ctx, t.exec, q, scan.StructMapper[categoryRow]())
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]ledger.Category, len(rows))
	for i, row := range rows {
		out[i] = row.toLedger()
	}
	return out, nil
}

// UpdateTarget sets or, with a nil target, clears the budget target.
func (t *CategoriesTable) UpdateTarget(ctx context.Context, owner, id uuid.UUID, target *int64) error {
	var value any
	if target != nil {
		value = *target
	}
	q := psql.Update(
		um.Table(categoriesTable),
		um.SetCol("budget_target").ToArg(value),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("user_id").EQ(psql.Arg(owner))),
	)
	res, err := bob.Exec(ctx, t.exec, q)
	if err != nil {
		return translateError(err)
	}
	return requireRow(res)
}
