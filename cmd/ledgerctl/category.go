package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/google/subcommands"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/service"
)

type categoryCmd struct {
	list   bool
	name   string
	kind   string
	target string
	setFor string
}

func (*categoryCmd) Name() string     { return "category" }
func (*categoryCmd) Synopsis() string { return "create or list categories and set budget targets" }
func (*categoryCmd) Usage() string {
	return `ledgerctl category -name <name> [-kind expense|income] [-target <n>]
ledgerctl category -list
ledgerctl category -set-target <category id> [-target <n>]

  With -set-target, an empty -target clears the budget target.
`
}

func (c *categoryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List categories")
	f.StringVar(&c.name, "name", "", "Name of the new category")
	f.StringVar(&c.kind, "kind", "expense", "Kind of the new category")
	f.StringVar(&c.target, "target", "", "Budget target per period")
	f.StringVar(&c.setFor, "set-target", "", "Change the budget target of this category")
}

func (c *categoryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := currentUser()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	code := a.Config.Currency

	var target *int64
	if c.target != "" {
		if target, err = currency.ParseOptionalMinor(&c.target, code); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid target %q: %v\n", c.target, err)
			return subcommands.ExitUsageError
		}
	}

	switch {
	case c.list:
		categories, err := a.Service.Ledger.ListCategories(ctx, user)
		if err != nil {
			printError("Error listing categories", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderCategories(categories, code))

	case c.setFor != "":
		id, err := uuid.FromString(c.setFor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid category ID %q\n", c.setFor)
			return subcommands.ExitUsageError
		}
		if err := a.Service.Ledger.SetBudgetTarget(ctx, user, id, target); err != nil {
			printError("Error setting target", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Updated category %s\n", id)

	default:
		kind, err := ledger.ParseKind(c.kind)
		if err != nil {
			printError("Error parsing kind", err)
			return subcommands.ExitUsageError
		}
		created, err := a.Service.Ledger.CreateCategory(ctx, user, service.NewCategory{
			Name:         c.name,
			Kind:         kind,
			BudgetTarget: target,
		})
		if err != nil {
			printError("Error creating category", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Created category %s\n", created.ID)
	}
	return subcommands.ExitSuccess
}

func renderCategories(categories []ledger.Category, code string) string {
	var b strings.Builder
	b.WriteString("| ID | Name | Kind | Target |\n|---|---|---|--:|\n")
	for _, c := range categories {
		target := "-"
		if v, ok := c.Target(); ok {
			target = currency.Display(v, code)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", c.ID, c.Name, c.Kind, target)
	}
	return b.String()
}
