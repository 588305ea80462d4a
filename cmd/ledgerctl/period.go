package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/subcommands"

	"github.com/carson-networks/budget-ledger/internal/aggregate"
	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/service"
)

type periodCmd struct {
	date        string
	granularity string
	showTxs     bool
	dump        bool
}

func (*periodCmd) Name() string     { return "period" }
func (*periodCmd) Synopsis() string { return "display the budget of a period" }
func (*periodCmd) Usage() string {
	return `ledgerctl period [-d <date>] [-g day|week|month|quarter|year] [-tx] [-dump]

  Materializes the recurring transactions of the period and prints its
  per-category actuals, targets and variances.
`
}

func (c *periodCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", ledger.DateKey(ledger.DateOf(timeNow())), "Any day inside the period (YYYY-MM-DD)")
	f.StringVar(&c.granularity, "g", "month", "Period size")
	f.BoolVar(&c.showTxs, "tx", false, "Also list the transactions")
	f.BoolVar(&c.dump, "dump", false, "Print the raw period view instead of the table")
}

func (c *periodCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := currentUser()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	g, err := ledger.ParseGranularity(c.granularity)
	if err != nil {
		printError("Error parsing granularity", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	view, err := a.Service.Ledger.ListPeriod(ctx, user, ledger.PeriodOf(on, g))
	if err != nil {
		printError("Error listing period", err)
		return subcommands.ExitFailure
	}

	if c.dump {
		spew.Fdump(os.Stdout, view)
		return subcommands.ExitSuccess
	}
	printMarkdown(renderPeriod(view, a.Config.Currency, c.showTxs))
	return subcommands.ExitSuccess
}

// renderPeriod formats a period view as markdown.
func renderPeriod(view *service.PeriodView, code string, withTransactions bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Budget %s to %s\n\n", ledger.DateKey(view.Period.Start), ledger.DateKey(view.Period.End))

	b.WriteString("| Category | Kind | Actual | Target | Variance | Count |\n")
	b.WriteString("|---|---|--:|--:|--:|--:|\n")
	for _, a := range aggregate.Sorted(view.Aggregates, view.Registry) {
		name, kind := categoryLabel(view.Registry, a.CategoryID)
		target := "-"
		if a.HasTarget {
			target = currency.Display(a.Target, code)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d |\n",
			name, kind,
			currency.Display(a.Actual, code),
			target,
			currency.Display(a.Variance, code),
			a.Count)
	}

	totals := aggregate.Sum(view.Aggregates)
	fmt.Fprintf(&b, "\n**Income** %s, **Expense** %s, **Net** %s\n",
		currency.Display(totals.Income, code),
		currency.Display(totals.Expense, code),
		currency.Display(totals.Net, code))

	if withTransactions && len(view.Transactions) > 0 {
		b.WriteString("\n## Transactions\n\n| Date | Category | Amount | Description | Recurring |\n|---|---|--:|---|---|\n")
		for _, tx := range view.Transactions {
			name, _ := categoryLabel(view.Registry, tx.Bucket())
			recurring := ""
			if tx.TemplateID.Valid {
				recurring = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				ledger.DateKey(tx.OccurredOn), name, currency.Display(tx.Amount, code),
				strings.ReplaceAll(tx.Description, "|", "/"), recurring)
		}
	}
	return b.String()
}
