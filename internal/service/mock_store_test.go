package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/budget-ledger/internal/events"
	"github.com/carson-networks/budget-ledger/internal/ledger"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) InsertTransaction(ctx context.Context, tx ledger.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockStore) UpdateTransaction(ctx context.Context, tx ledger.Transaction, prev time.Time) error {
	return m.Called(ctx, tx, prev).Error(0)
}

func (m *mockStore) DeleteTransactions(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]ledger.Transaction, error) {
	args := m.Called(ctx, owner, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *mockStore) FindTransaction(ctx context.Context, owner, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *mockStore) QueryTransactions(ctx context.Context, owner uuid.UUID, start, end time.Time) ([]ledger.Transaction, error) {
	args := m.Called(ctx, owner, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *mockStore) QueryTemplates(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]ledger.Template, error) {
	args := m.Called(ctx, owner, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Template), args.Error(1)
}

func (m *mockStore) InsertTemplate(ctx context.Context, t ledger.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockStore) SetTemplateActive(ctx context.Context, owner, id uuid.UUID, active bool) error {
	return m.Called(ctx, owner, id, active).Error(0)
}

func (m *mockStore) QueryCategories(ctx context.Context, owner uuid.UUID) ([]ledger.Category, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Category), args.Error(1)
}

func (m *mockStore) InsertCategory(ctx context.Context, c ledger.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockStore) UpdateCategoryTarget(ctx context.Context, owner, id uuid.UUID, target *int64) error {
	return m.Called(ctx, owner, id, target).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e events.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}
