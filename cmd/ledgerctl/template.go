package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/google/subcommands"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/recurrence"
	"github.com/carson-networks/budget-ledger/internal/service"
)

type templateCmd struct {
	list        bool
	all         bool
	deactivate  string
	category    string
	amount      string
	description string
	frequency   string
	interval    int
	anchor      string
	end         string
	max         int
}

func (*templateCmd) Name() string     { return "template" }
func (*templateCmd) Synopsis() string { return "create, list or deactivate recurring templates" }
func (*templateCmd) Usage() string {
	return `ledgerctl template -amount <n> -freq <daily|weekly|monthly|yearly> -anchor <YYYY-MM-DD> [-interval <n>] [-end <date>] [-max <n>] [-category <id>] [-desc <text>]
ledgerctl template -list [-all]
ledgerctl template -deactivate <template id>
`
}

func (c *templateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List templates")
	f.BoolVar(&c.all, "all", false, "Include inactive templates when listing")
	f.StringVar(&c.deactivate, "deactivate", "", "Stop generating occurrences of this template")
	f.StringVar(&c.category, "category", "", "Category ID")
	f.StringVar(&c.amount, "amount", "", "Signed amount of every occurrence")
	f.StringVar(&c.description, "desc", "", "Description")
	f.StringVar(&c.frequency, "freq", "monthly", "Recurrence frequency")
	f.IntVar(&c.interval, "interval", 1, "Recur every n frequency units")
	f.StringVar(&c.anchor, "anchor", "", "First occurrence")
	f.StringVar(&c.end, "end", "", "Last possible occurrence")
	f.IntVar(&c.max, "max", 0, "Maximum number of occurrences, 0 for unbounded")
}

// newTemplate converts the flags into a template definition.
func (c *templateCmd) newTemplate(code string) (service.NewTemplate, error) {
	var in service.NewTemplate
	if c.category != "" {
		id, err := uuid.FromString(c.category)
		if err != nil {
			return in, ledger.NewValidationError("invalid category id %q", c.category)
		}
		in.CategoryID = uuid.NullUUID{UUID: id, Valid: true}
	}
	amount, err := currency.ParseMinor(c.amount, code)
	if err != nil {
		return in, ledger.NewValidationError("invalid amount %q: %v", c.amount, err)
	}
	freq, err := ledger.ParseFrequency(c.frequency)
	if err != nil {
		return in, err
	}
	anchor, err := ledger.ParseDate(c.anchor)
	if err != nil {
		return in, ledger.NewValidationError("invalid anchor %q", c.anchor)
	}
	in.Amount = amount
	in.Description = c.description
	in.Rule = ledger.Rule{
		Frequency:      freq,
		Interval:       c.interval,
		Anchor:         anchor,
		MaxOccurrences: c.max,
	}
	if c.end != "" {
		end, err := ledger.ParseDate(c.end)
		if err != nil {
			return in, ledger.NewValidationError("invalid end date %q", c.end)
		}
		in.Rule.EndDate = &end
	}
	return in, nil
}

func (c *templateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	switch {
	case c.list:
		templates, err := a.Service.Ledger.ListTemplates(ctx, user, !c.all)
		if err != nil {
			printError("Error listing templates", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderTemplates(templates, code, timeNow()))

	case c.deactivate != "":
		id, err := uuid.FromString(c.deactivate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid template ID %q\n", c.deactivate)
			return subcommands.ExitUsageError
		}
		if err := a.Service.Ledger.DeactivateTemplate(ctx, user, id); err != nil {
			printError("Error deactivating template", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deactivated template %s\n", id)

	default:
		in, err := c.newTemplate(code)
		if err != nil {
			printError("Error parsing template", err)
			return subcommands.ExitUsageError
		}
		tpl, err := a.Service.Ledger.CreateTemplate(ctx, user, in)
		if err != nil {
			printError("Error creating template", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Created template %s\n", tpl.ID)
	}
	return subcommands.ExitSuccess
}

func renderTemplates(templates []ledger.Template, code string, today time.Time) string {
	var b strings.Builder
	b.WriteString("| ID | Description | Amount | Rule | Active | Next |\n|---|---|--:|---|---|---|\n")
	for _, t := range templates {
		next := "-"
		if d, ok, err := recurrence.Next(t, today); err == nil && ok {
			next = ledger.DateKey(d)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %t | %s |\n",
			t.ID, t.Description, currency.Display(t.Amount, code), describeRule(t.Rule), t.Active, next)
	}
	return b.String()
}

func describeRule(r ledger.Rule) string {
	s := fmt.Sprintf("%s every %d from %s", r.Frequency, r.Interval, ledger.DateKey(r.Anchor))
	if r.EndDate != nil {
		s += " until " + ledger.DateKey(*r.EndDate)
	}
	if r.MaxOccurrences > 0 {
		s += fmt.Sprintf(", at most %d times", r.MaxOccurrences)
	}
	return s
}
