package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/app"
	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
)

var (
	userFlag     = flag.String("user", os.Getenv("LEDGER_USER"), "Owning user UUID, defaults to $LEDGER_USER")
	logLevelFlag = flag.String("log-level", "warn", "Log level of the embedded service")
)

// openApp starts the service over the configured store. The caller closes it.
func openApp(ctx context.Context) (*app.App, error) {
	env, err := config.ProcessEnvironmentVariables()
	if err != nil {
		return nil, err
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	logger := logging.SetupLogging(*logLevelFlag)
	logger.Out = os.Stderr

	return app.New(ctx, env, logger)
}

func currentUser() (uuid.UUID, error) {
	id, err := uuid.FromString(*userFlag)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("a user UUID is required, pass -user or set LEDGER_USER")
	}
	return id, nil
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

func printError(format string, err error) {
	fmt.Fprintf(os.Stderr, format+": %s\n", ledger.MessageOf(err))
}
