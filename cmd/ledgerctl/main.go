// Command ledgerctl reads and edits the budget ledger from a terminal. It uses the
// same configuration and store as the server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&periodCmd{}, "ledger")
	commander.Register(&editCmd{}, "ledger")
	commander.Register(&deleteCmd{}, "ledger")
	commander.Register(&templateCmd{}, "catalog")
	commander.Register(&categoryCmd{}, "catalog")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
