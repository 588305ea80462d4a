package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/budget-ledger/internal/events"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// CreateTransaction records a manually entered transaction.
func (s *LedgerService) CreateTransaction(ctx context.Context, user uuid.UUID, in NewTransaction) (*ledger.Transaction, error) {
	id, err := s.newID()
	if err != nil {
		return nil, ledger.NewStorageError("generate id", err)
	}
	now := s.now()
	tx := ledger.Transaction{
		ID:          id,
		UserID:      user,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Description: in.Description,
		OccurredOn:  ledger.DateOf(in.OccurredOn),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	reg, err := s.registry(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := reg.CheckAssignment(tx.CategoryID, tx.Amount); err != nil {
		return nil, err
	}

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return nil, ledger.NewStorageError("insert transaction", err)
	}
	s.cache.Invalidate(user, tx.Bucket(), tx.OccurredOn)
	s.publish(ctx, events.ReasonCreated, user, []uuid.UUID{tx.ID})
	return &tx, nil
}

// ApplyEdit patches one transaction. Edits of the same transaction run one at a
// time. A patch that breaks an invariant fails with a validation error and leaves
// the stored row untouched.
func (s *LedgerService) ApplyEdit(ctx context.Context, user, id uuid.UUID, patch TransactionPatch) (*ledger.Transaction, error) {
	if user == uuid.Nil {
		return nil, ledger.NewValidationError("user id is required")
	}
	updated, err := s.runEdit(ctx, user, id, patch, nil)
	if err != nil {
		return nil, err
	}
	s.publish(context.WithoutCancel(ctx), events.ReasonEdited, user, []uuid.UUID{id})
	return updated, nil
}

// ApplyBulkEdit applies every edit independently and reports each failure with
// its cause. Edits of the same transaction are applied in input order. Only a
// cancelled context aborts the batch; the result then still reports the edits
// already written, and every edit that was not applied is listed as a failure.
func (s *LedgerService) ApplyBulkEdit(ctx context.Context, user uuid.UUID, edits []Edit) (*BulkEditResult, error) {
	if user == uuid.Nil {
		return nil, ledger.NewValidationError("user id is required")
	}
	if len(edits) == 0 {
		return &BulkEditResult{}, nil
	}
	reg, err := s.registry(ctx, user)
	if err != nil {
		return nil, err
	}

	// Group item indexes per transaction, keeping first-seen order.
	var order []uuid.UUID
	byID := make(map[uuid.UUID][]int)
	for i, e := range edits {
		if _, seen := byID[e.ID]; !seen {
			order = append(order, e.ID)
		}
		byID[e.ID] = append(byID[e.ID], i)
	}

	results := make([]*ledger.Transaction, len(edits))
	failures := make([]error, len(edits))
	attempted := make([]bool, len(edits))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for _, id := range order {
		g.Go(func() error {
			for _, i := range byID[id] {
				if err := ctx.Err(); err != nil {
					return err
				}
				updated, err := s.runEdit(ctx, user, id, edits[i].Patch, reg)
				mu.Lock()
				results[i], failures[i], attempted[i] = updated, err, true
				mu.Unlock()
			}
			return nil
		})
	}
	aborted := g.Wait()

	result := &BulkEditResult{}
	var changed []uuid.UUID
	for i, e := range edits {
		err := failures[i]
		if !attempted[i] {
			err = aborted
		}
		if err != nil {
			var le *ledger.Error
			if !errors.As(err, &le) {
				err = ledger.NewStorageError("edit not applied", err)
			}
			result.Failures = append(result.Failures, EditFailure{
				Index:   i,
				ID:      e.ID,
				Kind:    ledger.KindOf(err),
				Message: ledger.MessageOf(err),
			})
			continue
		}
		result.Applied++
		result.Updated = append(result.Updated, *results[i])
		changed = append(changed, e.ID)
	}

	log := s.logger.WithFields(logrus.Fields{
		"userID":   user,
		"applied":  result.Applied,
		"failures": len(result.Failures),
	})
	if aborted != nil {
		log.WithError(aborted).Warn("Ledger.BulkEdit.Aborted")
	} else {
		log.Info("Ledger.BulkEdit.Complete")
	}
	s.publish(context.WithoutCancel(ctx), events.ReasonEdited, user, changed)
	return result, aborted
}

// editRun tracks one edit handed to the operator. Once sealed, an edit that has
// not started yet never runs.
type editRun struct {
	mu      sync.Mutex
	started bool
	sealed  bool
	done    chan struct{}
	updated *ledger.Transaction
	err     error
}

// runEdit applies patch on the worker owning id. If ctx ends while the edit is
// already running, runEdit waits for it, so a written edit is never reported as
// failed.
func (s *LedgerService) runEdit(ctx context.Context, user, id uuid.UUID, patch TransactionPatch, reg *ledger.Registry) (*ledger.Transaction, error) {
	run := &editRun{done: make(chan struct{})}
	err := s.operator.Process(ctx, id, actions.Func(func(ctx context.Context) error {
		run.mu.Lock()
		if run.sealed {
			run.mu.Unlock()
			return ctx.Err()
		}
		run.started = true
		run.mu.Unlock()
		defer close(run.done)

		run.updated, run.err = s.applyEdit(ctx, user, id, patch, reg)
		return run.err
	}))

	run.mu.Lock()
	started := run.started
	run.sealed = true
	run.mu.Unlock()
	if !started {
		return nil, err
	}
	<-run.done
	return run.updated, run.err
}

// editAttempts bounds how often an edit is recomputed after another writer
// changed the row between the read and the write.
const editAttempts = 3

// applyEdit runs on the operator worker owning id. A nil registry is loaded from
// the store. The operator only orders edits inside this process, so the write is
// conditional on the row being unchanged since it was read and the patch is
// reapplied to the fresh row on conflict.
func (s *LedgerService) applyEdit(ctx context.Context, user, id uuid.UUID, patch TransactionPatch, reg *ledger.Registry) (*ledger.Transaction, error) {
	for attempt := 1; ; attempt++ {
		updated, err := s.tryEdit(ctx, user, id, patch, &reg)
		if !errors.Is(err, storage.ErrConflict) {
			return updated, err
		}
		if attempt == editAttempts {
			return nil, ledger.NewStorageError("update transaction", err)
		}
		s.logger.WithFields(logrus.Fields{
			"transactionID": id.String(),
			"attempt":       attempt,
		}).Warn("Ledger.Edit.Conflict")
	}
}

func (s *LedgerService) tryEdit(ctx context.Context, user, id uuid.UUID, patch TransactionPatch, reg **ledger.Registry) (*ledger.Transaction, error) {
	current, err := s.store.FindTransaction(ctx, user, id)
	if err != nil {
		return nil, storeError("find transaction", err, "transaction %s not found", id)
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated := patch.Apply(*current)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if *reg == nil {
		if *reg, err = s.registry(ctx, user); err != nil {
			return nil, err
		}
	}
	if err := (*reg).CheckAssignment(updated.CategoryID, updated.Amount); err != nil {
		return nil, err
	}

	updated.UpdatedAt = s.now()
	if !updated.UpdatedAt.After(current.UpdatedAt) {
		updated.UpdatedAt = current.UpdatedAt.Add(time.Microsecond)
	}
	if err := s.store.UpdateTransaction(ctx, updated, current.UpdatedAt); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, err
		}
		return nil, storeError("update transaction", err, "transaction %s not found", id)
	}

	s.cache.Invalidate(user, current.Bucket(), current.OccurredOn)
	s.cache.Invalidate(user, updated.Bucket(), updated.OccurredOn)
	return &updated, nil
}

// BulkDelete removes the live transactions of user among ids and returns how many
// it removed. Foreign, unknown and already deleted ids are skipped without error.
func (s *LedgerService) BulkDelete(ctx context.Context, user uuid.UUID, ids []uuid.UUID) (int, error) {
	if user == uuid.Nil {
		return 0, ledger.NewValidationError("user id is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return 0, nil
	}

	removed, err := s.store.DeleteTransactions(ctx, user, unique)
	if err != nil {
		return 0, ledger.NewStorageError("delete transactions", err)
	}

	deleted := make([]uuid.UUID, len(removed))
	for i, tx := range removed {
		deleted[i] = tx.ID
		s.cache.Invalidate(user, tx.Bucket(), tx.OccurredOn)
	}
	s.logger.WithFields(logrus.Fields{
		"userID":    user,
		"requested": len(unique),
		"deleted":   len(removed),
	}).Info("Ledger.BulkDelete.Complete")
	s.publish(ctx, events.ReasonDeleted, user, deleted)
	return len(removed), nil
}
