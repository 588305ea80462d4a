package sqlconfig

import (
	"context"

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

const templatesTable = "recurring_templates"

var _ ITemplateTable = (*TemplatesTable)(nil)

type TemplatesTable struct {
	exec bob.Executor
}

func NewTemplatesTable(exec bob.Executor) TemplatesTable {
	return TemplatesTable{exec: exec}
}

func (t *TemplatesTable) Insert(ctx context.Context, tpl ledger.Template) error {
	q := psql.Insert(
		im.Into(templatesTable, templateColumns...),
		im.Values(psql.Arg(
			tpl.ID,
			tpl.UserID,
			nullUUIDArg(tpl.CategoryID),
			tpl.Amount,
			tpl.Description,
			int16(tpl.Rule.Frequency),
			tpl.Rule.Interval,
			dateArg(tpl.Rule.Anchor),
			nullDateArg(tpl.Rule.EndDate),
			tpl.Rule.MaxOccurrences,
			tpl.Active,
			tpl.CreatedAt,
			tpl.UpdatedAt,
		)),
	)
	_, err := bob.Exec(ctx, t.exec, q)
	return translateError(err)
}

// List returns the templates of owner, optionally only the active ones.
func (t *TemplatesTable) List(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]ledger.Template, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns(templateColumns)...),
		sm.From(templatesTable),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(owner))),
	}
	if activeOnly {
		queryMods = append(queryMods, sm.Where(psql.Quote("active").EQ(psql.Arg(true))))
	}
	queryMods = append(queryMods,
		sm.OrderBy("anchor_date").Asc(),
		sm.OrderBy("id").Asc(),
	)
	rows, err := bob.All(ctx, t.exec, psql.Select(queryMods...), scan.StructMapper[templateRow]())
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]ledger.Template, len(rows))
	for i, row := range rows {
		out[i] = row.toLedger()
	}
	return out, nil
}

func (t *TemplatesTable) SetActive(ctx context.Context, owner, id uuid.UUID, active bool) error {
	q := psql.Update(
		um.Table(templatesTable),
		um.SetCol("active").ToArg(active),
		um.SetCol("updated_at").To(psql.Raw("NOW()")),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("user_id").EQ(psql.Arg(owner))),
	)
	res, err := bob.Exec(ctx, t.exec, q)
	if err != nil {
		return translateError(err)
	}
	return requireRow(res)
}
