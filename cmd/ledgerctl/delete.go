package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete transactions" }
func (*deleteCmd) Usage() string {
	return `ledgerctl delete <transaction id>...

  Deletes the listed transactions. A deleted recurring occurrence is not
  generated again.
`
}

func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	n, err := a.Service.Ledger.BulkDelete(ctx, user, ids)
	if err != nil {
		printError("Error deleting transactions", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted %d transactions\n", n)
	return subcommands.ExitSuccess
}
