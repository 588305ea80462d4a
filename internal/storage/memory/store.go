// Package memory is an in-process ledger store for tests and local runs. It keeps
// the same guarantees as the Postgres store: owner-scoped access, soft deletes and
// one transaction per (template, occurrence date).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type occurrenceKey struct {
	template uuid.UUID
	date     string
}

type storedTransaction struct {
	tx      ledger.Transaction
	deleted bool
}

// Store implements the ledger store with maps guarded by one RWMutex.
type Store struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*storedTransaction
	occurrences  map[occurrenceKey]uuid.UUID
	templates    map[uuid.UUID]ledger.Template
	categories   map[uuid.UUID]ledger.Category
	clock        func() time.Time
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[uuid.UUID]*storedTransaction),
		occurrences:  make(map[occurrenceKey]uuid.UUID),
		templates:    make(map[uuid.UUID]ledger.Template),
		categories:   make(map[uuid.UUID]ledger.Category),
		clock:        time.Now,
	}
}

func (s *Store) InsertTransaction(_ context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.ID]; exists {
		return storage.ErrDuplicateOccurrence
	}
	if tx.TemplateID.Valid && tx.OccurrenceDate != nil {
		key := occurrenceKey{template: tx.TemplateID.UUID, date: ledger.DateKey(*tx.OccurrenceDate)}
		if _, taken := s.occurrences[key]; taken {
			return storage.ErrDuplicateOccurrence
		}
		s.occurrences[key] = tx.ID
	}
	s.transactions[tx.ID] = &storedTransaction{tx: normalize(tx)}
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx ledger.Transaction, prev time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.live(tx.UserID, tx.ID)
	if !ok {
		return storage.ErrNotFound
	}
	if !stored.tx.UpdatedAt.Equal(prev) {
		return storage.ErrConflict
	}
	stored.tx.CategoryID = tx.CategoryID
	stored.tx.Amount = tx.Amount
	stored.tx.Description = tx.Description
	stored.tx.OccurredOn = ledger.DateOf(tx.OccurredOn)
	stored.tx.UpdatedAt = tx.UpdatedAt
	return nil
}

func (s *Store) DeleteTransactions(_ context.Context, owner uuid.UUID, ids []uuid.UUID) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []ledger.Transaction
	for _, id := range ids {
		stored, ok := s.live(owner, id)
		if !ok {
			continue
		}
		stored.deleted = true
		stored.tx.UpdatedAt = s.clock()
		removed = append(removed, stored.tx)
	}
	return removed, nil
}

func (s *Store) FindTransaction(_ context.Context, owner, id uuid.UUID) (*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.live(owner, id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	tx := stored.tx
	return &tx, nil
}

func (s *Store) QueryTransactions(_ context.Context, owner uuid.UUID, start, end time.Time) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end = ledger.DateOf(start), ledger.DateOf(end)
	var out []ledger.Transaction
	for _, stored := range s.transactions {
		tx := stored.tx
		if stored.deleted || tx.UserID != owner {
			continue
		}
		if tx.OccurredOn.Before(start) || tx.OccurredOn.After(end) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredOn.Equal(out[j].OccurredOn) {
			return out[i].OccurredOn.Before(out[j].OccurredOn)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) QueryTemplates(_ context.Context, owner uuid.UUID, activeOnly bool) ([]ledger.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Template
	for _, t := range s.templates {
		if t.UserID != owner || (activeOnly && !t.Active) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Rule.Anchor.Equal(out[j].Rule.Anchor) {
			return out[i].Rule.Anchor.Before(out[j].Rule.Anchor)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) InsertTemplate(_ context.Context, t ledger.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.Rule.Anchor = ledger.DateOf(t.Rule.Anchor)
	s.templates[t.ID] = t
	return nil
}

func (s *Store) SetTemplateActive(_ context.Context, owner, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok || t.UserID != owner {
		return storage.ErrNotFound
	}
	t.Active = active
	t.UpdatedAt = s.clock()
	s.templates[id] = t
	return nil
}

func (s *Store) QueryCategories(_ context.Context, owner uuid.UUID) ([]ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Category
	for _, c := range s.categories {
		if c.UserID == owner {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) InsertCategory(_ context.Context, c ledger.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories[c.ID] = c
	return nil
}

func (s *Store) UpdateCategoryTarget(_ context.Context, owner, id uuid.UUID, target *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != owner {
		return storage.ErrNotFound
	}
	if target != nil {
		v := *target
		target = &v
	}
	c.BudgetTarget = target
	s.categories[id] = c
	return nil
}

// live returns the stored row if it belongs to owner and is not deleted.
// Callers hold the lock.
func (s *Store) live(owner, id uuid.UUID) (*storedTransaction, bool) {
	stored, ok := s.transactions[id]
	if !ok || stored.deleted || stored.tx.UserID != owner {
		return nil, false
	}
	return stored, true
}

func normalize(tx ledger.Transaction) ledger.Transaction {
	tx.OccurredOn = ledger.DateOf(tx.OccurredOn)
	if tx.OccurrenceDate != nil {
		d := ledger.DateOf(*tx.OccurrenceDate)
		tx.OccurrenceDate = &d
	}
	return tx
}
