package service

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/events"
)

// Service holds all business logic services.
type Service struct {
	Ledger *LedgerService
}

// NewService creates a new Service over the given store.
func NewService(store Store, publisher events.Publisher, logger logrus.FieldLogger, opts Options) *Service {
	return &Service{
		Ledger: NewLedgerService(store, publisher, logger, opts),
	}
}

// Close stops the background edit workers.
func (s *Service) Close() {
	s.Ledger.Close()
}
