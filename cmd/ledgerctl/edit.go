package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"
	"github.com/google/subcommands"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/service"
)

type editCmd struct {
	amount        string
	category      string
	clearCategory bool
	description   string
	date          string
	setDesc       bool
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit one or more transactions" }
func (*editCmd) Usage() string {
	return `ledgerctl edit [-amount <n>] [-category <id> | -clear-category] [-desc <text>] [-date <YYYY-MM-DD>] <transaction id>...

  Applies the same changes to every listed transaction. Each transaction is
  validated on its own; failures are reported and do not stop the others.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "New signed amount, e.g. -12.50")
	f.StringVar(&c.category, "category", "", "New category ID")
	f.BoolVar(&c.clearCategory, "clear-category", false, "Move the transactions to uncategorized")
	f.StringVar(&c.date, "date", "", "New occurrence date")
	f.Func("desc", "New description", func(v string) error {
		c.description, c.setDesc = v, true
		return nil
	})
}

// patch converts the flags into a transaction patch.
func (c *editCmd) patch(code string) (service.TransactionPatch, error) {
	var patch service.TransactionPatch
	if c.clearCategory && c.category != "" {
		return patch, ledger.NewValidationError("-category and -clear-category are exclusive")
	}
	if c.clearCategory {
		patch.CategoryID = omitnull.FromPtr[uuid.UUID](nil)
	}
	if c.category != "" {
		id, err := uuid.FromString(c.category)
		if err != nil {
			return patch, ledger.NewValidationError("invalid category id %q", c.category)
		}
		patch.CategoryID = omitnull.From(id)
	}
	if c.amount != "" {
		minor, err := currency.ParseMinor(c.amount, code)
		if err != nil {
			return patch, ledger.NewValidationError("invalid amount %q: %v", c.amount, err)
		}
		patch.Amount = omit.From(minor)
	}
	if c.setDesc {
		patch.Description = omit.From(c.description)
	}
	if c.date != "" {
		on, err := ledger.ParseDate(c.date)
		if err != nil {
			return patch, ledger.NewValidationError("invalid date %q", c.date)
		}
		patch.OccurredOn = omit.From(on)
	}
	return patch, nil
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := currentUser()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	ids, err := parseIDs(f.Args())
	if err != nil || len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "Expected one or more transaction IDs")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	patch, err := c.patch(a.Config.Currency)
	if err != nil {
		printError("Error parsing edit", err)
		return subcommands.ExitUsageError
	}

	edits := make([]service.Edit, len(ids))
	for i, id := range ids {
		edits[i] = service.Edit{ID: id, Patch: patch}
	}
	res, err := a.Service.Ledger.ApplyBulkEdit(ctx, user, edits)
	if res == nil {
		printError("Error editing transactions", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Applied %d of %d edits\n", res.Applied, len(edits))
	for _, failure := range res.Failures {
		fmt.Fprintf(os.Stderr, "  %s: %s (%s)\n", failure.ID, failure.Message, failure.Kind)
	}
	if err != nil {
		printError("Edit interrupted", err)
		return subcommands.ExitFailure
	}
	if len(res.Failures) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
