package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/budget-ledger/internal/aggregate"
	"github.com/carson-networks/budget-ledger/internal/events"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/operator"
	"github.com/carson-networks/budget-ledger/internal/recurrence"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// Options tune the ledger coordinator.
type Options struct {
	Aggregate              aggregate.Options
	MaterializeConcurrency int
	Workers                int
	CacheSize              int
	CacheTTL               time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaterializeConcurrency < 1 {
		o.MaterializeConcurrency = 4
	}
	if o.Workers < 1 {
		o.Workers = 4
	}
	if o.CacheSize < 1 {
		o.CacheSize = 1024
	}
	return o
}

// LedgerService coordinates recurrence expansion, storage and aggregation.
type LedgerService struct {
	store     Store
	cache     *aggregate.Cache
	operator  *operator.OperatorDelegator
	publisher events.Publisher
	logger    logrus.FieldLogger
	opts      Options

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// NewLedgerService starts the edit workers; call Close to stop them.
func NewLedgerService(store Store, publisher events.Publisher, logger logrus.FieldLogger, opts Options) *LedgerService {
	opts = opts.withDefaults()
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	op := operator.NewOperatorDelegator(opts.Workers)
	op.Start()
	return &LedgerService{
		store:     store,
		cache:     aggregate.NewCache(opts.CacheSize, opts.CacheTTL),
		operator:  op,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		newID:     uuid.NewV7,
	}
}

func (s *LedgerService) Close() {
	s.operator.Stop()
}

// ListPeriod materializes every recurring occurrence due inside period, then reads
// the period and aggregates it. Materialization always finishes before the read.
func (s *LedgerService) ListPeriod(ctx context.Context, user uuid.UUID, period ledger.Period) (*PeriodView, error) {
	if err := validateRequest(user, period); err != nil {
		return nil, err
	}
	logData := logging.GetLogData(ctx)
	logData.AddData("userID", user)
	logData.AddData("period", period.Key())

	endMaterialize := logData.AddTiming("materializeDuration")
	created, err := s.materialize(ctx, user, period)
	endMaterialize()
	if err != nil {
		return nil, err
	}
	logData.AddData("materialized", created)

	endRead := logData.AddTiming("readDuration")
	defer endRead()

	gen := s.cache.Generation(user)
	txs, err := s.store.QueryTransactions(ctx, user, period.Start, period.End)
	if err != nil {
		return nil, ledger.NewStorageError("query transactions", err)
	}
	reg, err := s.registry(ctx, user)
	if err != nil {
		return nil, err
	}

	aggs := aggregate.Compute(txs, reg, period, s.opts.Aggregate)
	if !s.cache.Put(user, period, aggs, gen) {
		logData.AddData("cacheSkipped", true)
	}

	return &PeriodView{
		Period:       period,
		Aggregates:   aggs,
		Transactions: txs,
		Registry:     reg,
	}, nil
}

// Summary returns the aggregates of a period, from the cache when no write has
// touched the period since it was last listed.
func (s *LedgerService) Summary(ctx context.Context, user uuid.UUID, period ledger.Period) (*Summary, error) {
	if err := validateRequest(user, period); err != nil {
		return nil, err
	}
	if aggs, ok := s.cache.GetPeriod(user, period); ok {
		reg, err := s.registry(ctx, user)
		if err != nil {
			return nil, err
		}
		return &Summary{Period: period, Aggregates: aggs, Totals: aggregate.Sum(aggs), Registry: reg, Cached: true}, nil
	}

	view, err := s.ListPeriod(ctx, user, period)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Period:     period,
		Aggregates: view.Aggregates,
		Totals:     aggregate.Sum(view.Aggregates),
		Registry:   view.Registry,
	}, nil
}

// materialize inserts the missing occurrences of every active template that
// overlaps period and returns how many rows it created. An occurrence another
// caller inserted first is skipped.
func (s *LedgerService) materialize(ctx context.Context, user uuid.UUID, period ledger.Period) (int, error) {
	templates, err := s.store.QueryTemplates(ctx, user, true)
	if err != nil {
		return 0, ledger.NewStorageError("query templates", err)
	}

	var due []ledger.Template
	for _, tpl := range templates {
		if start, end := tpl.Window(); period.Overlaps(start, end) {
			due = append(due, tpl)
		}
	}
	if len(due) == 0 {
		return 0, nil
	}

	current, err := s.store.QueryTransactions(ctx, user, period.Start, period.End)
	if err != nil {
		return 0, ledger.NewStorageError("query transactions", err)
	}
	existing := make(map[uuid.UUID]ledger.DateSet)
	for _, tx := range current {
		if !tx.TemplateID.Valid || tx.OccurrenceDate == nil {
			continue
		}
		set, ok := existing[tx.TemplateID.UUID]
		if !ok {
			set = ledger.NewDateSet()
			existing[tx.TemplateID.UUID] = set
		}
		set.Add(*tx.OccurrenceDate)
	}

	var (
		mu      sync.Mutex
		created []ledger.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaterializeConcurrency)
	for _, tpl := range due {
		g.Go(func() error {
			inserted, err := s.materializeTemplate(gctx, tpl, period, existing[tpl.ID])
			mu.Lock()
			created = append(created, inserted...)
			mu.Unlock()
			return err
		})
	}
	err = g.Wait()

	if len(created) > 0 {
		ids := make([]uuid.UUID, len(created))
		for i, tx := range created {
			ids[i] = tx.ID
			s.cache.Invalidate(user, tx.Bucket(), tx.OccurredOn)
		}
		s.publish(ctx, events.ReasonMaterialized, user, ids)
	}
	return len(created), err
}

func (s *LedgerService) materializeTemplate(ctx context.Context, tpl ledger.Template, period ledger.Period, existing ledger.DateSet) ([]ledger.Transaction, error) {
	log := s.logger.WithFields(logrus.Fields{
		"userID":     tpl.UserID,
		"templateID": tpl.ID,
		"period":     period.Key(),
	})

	seq, err := recurrence.Expand(tpl, period.Start, period.End, existing)
	if err != nil {
		// A stored rule that no longer validates is skipped, not fatal.
		log.WithError(err).Warn("Ledger.Materialize.SkippedTemplate")
		return nil, nil
	}

	var inserted []ledger.Transaction
	for occurrence := range seq {
		id, err := s.newID()
		if err != nil {
			return inserted, ledger.NewStorageError("generate id", err)
		}
		tx := ledger.NewInstance(id, tpl, occurrence)
		tx.CreatedAt = s.now()
		tx.UpdatedAt = tx.CreatedAt

		err = s.store.InsertTransaction(ctx, tx)
		if errors.Is(err, storage.ErrDuplicateOccurrence) {
			continue
		}
		if err != nil {
			return inserted, ledger.NewStorageError("insert transaction", err)
		}
		inserted = append(inserted, tx)
	}
	if len(inserted) > 0 {
		log.WithField("count", len(inserted)).Info("Ledger.Materialize.Complete")
	}
	return inserted, nil
}

// registry loads the user's categories.
func (s *LedgerService) registry(ctx context.Context, user uuid.UUID) (*ledger.Registry, error) {
	categories, err := s.store.QueryCategories(ctx, user)
	if err != nil {
		return nil, ledger.NewStorageError("query categories", err)
	}
	reg, err := ledger.NewRegistry(categories)
	if err != nil {
		return nil, ledger.NewStorageError("load categories", err)
	}
	return reg, nil
}

func (s *LedgerService) publish(ctx context.Context, reason events.Reason, user uuid.UUID, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	event := events.NewTransactionsChanged(reason, user, ids, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"userID": user,
			"reason": reason,
		}).Warn("Ledger.Publish.Error")
	}
}

func validateRequest(user uuid.UUID, period ledger.Period) error {
	if user == uuid.Nil {
		return ledger.NewValidationError("user id is required")
	}
	if period.Start.IsZero() || period.End.IsZero() || period.Start.After(period.End) {
		return ledger.NewValidationError("invalid period %s", period.Key())
	}
	return nil
}
