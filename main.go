package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/api"
	"github.com/carson-networks/budget-ledger/internal/app"
	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/logging"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}
	if err := envConfig.Validate(); err != nil {
		logrus.WithError(err).Fatal("config.Validate")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.Info("budget-ledger starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledgerApp, err := app.New(ctx, envConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("app.New")
		return
	}
	defer ledgerApp.Close()

	httpRest := api.Rest{
		Logger:   logger,
		Port:     envConfig.Port,
		Service:  ledgerApp.Service,
		Currency: envConfig.Currency,
	}
	if ledgerApp.Health != nil {
		httpRest.Store = ledgerApp.Health
	}
	httpRest.Serve(ctx)
}
