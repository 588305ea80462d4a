// Package app wires configuration into a running ledger service for the server
// and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/aggregate"
	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/events"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/memory"
)

// Pinger is implemented by backends that can lose connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Service *service.Service
	// Health is nil for the in-memory backend.
	Health Pinger

	closers []func() error
}

// ServiceOptions converts the configuration into coordinator options.
func ServiceOptions(env *config.Config) (service.Options, error) {
	variance, err := aggregate.ParseVarianceConvention(env.VarianceConvention)
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{
		Aggregate: aggregate.Options{
			Variance:          variance,
			OmitUncategorized: env.OmitUncategorized,
		},
		MaterializeConcurrency: env.MaterializeConcurrency,
		Workers:                env.OperatorWorkers,
		CacheSize:              env.AggregateCacheSize,
		CacheTTL:               env.AggregateCacheTTL,
	}, nil
}

// New opens the configured store and event publisher and starts the service.
func New(ctx context.Context, env *config.Config, logger *logrus.Logger) (*App, error) {
	opts, err := ServiceOptions(env)
	if err != nil {
		return nil, err
	}
	a := &App{Config: env, Logger: logger}

	var store service.Store
	switch env.StorageBackend {
	case config.BackendMemory:
		logger.Warn("App.New.memoryBackend: data is lost on exit")
		store = memory.NewStore()
	default:
		db, err := storage.NewStorage(env)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.Ping(pingCtx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		store, a.Health = db, db
	}

	var publisher events.Publisher = events.NopPublisher{}
	if env.AMQPURL != "" {
		amqp, err := events.NewAMQPPublisher(env.AMQPURL, env.AMQPExchange, env.AMQPRoutingKey, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		publisher = amqp
		a.closers = append(a.closers, amqp.Close)
	}

	a.Service = service.NewService(store, publisher, logger, opts)
	logger.WithFields(logrus.Fields{
		"backend":  env.StorageBackend,
		"events":   env.AMQPURL != "",
		"variance": opts.Aggregate.Variance.String(),
	}).Info("App.New.ready")
	return a, nil
}

// Close stops the workers and then releases the publisher and the database.
func (a *App) Close() {
	if a.Service != nil {
		a.Service.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.WithError(err).Warn("App.Close.error")
		}
	}
	a.closers = nil
}
