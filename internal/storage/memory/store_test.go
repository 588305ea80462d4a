package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

func newTransaction(owner uuid.UUID, amount int64, on int) ledger.Transaction {
	return ledger.Transaction{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     owner,
		Amount:     amount,
		OccurredOn: ledger.Date(2024, 3, on),
	}
}

func TestStore_InsertAndQueryScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice, bob := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	require.NoError(t, s.InsertTransaction(ctx, newTransaction(alice, -100, 5)))
	require.NoError(t, s.InsertTransaction(ctx, newTransaction(alice, -200, 1)))
	require.NoError(t, s.InsertTransaction(ctx, newTransaction(bob, -300, 5)))

	got, err := s.QueryTransactions(ctx, alice, ledger.Date(2024, 3, 1), ledger.Date(2024, 3, 31))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(-200), got[0].Amount)
	assert.Equal(t, int64(-100), got[1].Amount)
}

func TestStore_DuplicateOccurrence(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tpl := ledger.Template{ID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4()), Amount: -50}
	on := ledger.Date(2024, 3, 15)

	require.NoError(t, s.InsertTransaction(ctx, ledger.NewInstance(uuid.Must(uuid.NewV4()), tpl, on)))
	err := s.InsertTransaction(ctx, ledger.NewInstance(uuid.Must(uuid.NewV4()), tpl, on))

	assert.ErrorIs(t, err, storage.ErrDuplicateOccurrence)
}

func TestStore_DeletedOccurrenceStaysReserved(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tpl := ledger.Template{ID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4()), Amount: -50}
	on := ledger.Date(2024, 3, 15)
	first := ledger.NewInstance(uuid.Must(uuid.NewV4()), tpl, on)
	require.NoError(t, s.InsertTransaction(ctx, first))

	removed, err := s.DeleteTransactions(ctx, tpl.UserID, []uuid.UUID{first.ID})
	require.NoError(t, err)
	require.Len(t, removed, 1)

	err = s.InsertTransaction(ctx, ledger.NewInstance(uuid.Must(uuid.NewV4()), tpl, on))
	assert.ErrorIs(t, err, storage.ErrDuplicateOccurrence)
}

func TestStore_DeleteOnlyOwnedLiveRows(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice, bob := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	mine := newTransaction(alice, -100, 2)
	theirs := newTransaction(bob, -100, 2)
	require.NoError(t, s.InsertTransaction(ctx, mine))
	require.NoError(t, s.InsertTransaction(ctx, theirs))

	removed, err := s.DeleteTransactions(ctx, alice, []uuid.UUID{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	again, err := s.DeleteTransactions(ctx, alice, []uuid.UUID{mine.ID})
	require.NoError(t, err)
	assert.Empty(t, again)

	_, err = s.FindTransaction(ctx, alice, mine.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.FindTransaction(ctx, bob, theirs.ID)
	assert.NoError(t, err)
}

func TestStore_UpdateForeignRowNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tx := newTransaction(uuid.Must(uuid.NewV4()), -100, 2)
	require.NoError(t, s.InsertTransaction(ctx, tx))

	tx.UserID = uuid.Must(uuid.NewV4())
	tx.Amount = -5

	assert.ErrorIs(t, s.UpdateTransaction(ctx, tx, tx.UpdatedAt), storage.ErrNotFound)
}

func TestStore_UpdateWithStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tx := newTransaction(uuid.Must(uuid.NewV4()), -100, 2)
	tx.UpdatedAt = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertTransaction(ctx, tx))

	first := tx
	first.Amount = -150
	first.UpdatedAt = tx.UpdatedAt.Add(time.Second)
	require.NoError(t, s.UpdateTransaction(ctx, first, tx.UpdatedAt))

	second := tx
	second.Amount = -175
	second.UpdatedAt = tx.UpdatedAt.Add(2 * time.Second)
	assert.ErrorIs(t, s.UpdateTransaction(ctx, second, tx.UpdatedAt), storage.ErrConflict)

	stored, err := s.FindTransaction(ctx, tx.UserID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-150), stored.Amount)
}

func TestStore_ConcurrentInsertsKeepOneOccurrence(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tpl := ledger.Template{ID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4()), Amount: -50}
	on := ledger.Date(2024, 3, 15)

	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.InsertTransaction(ctx, ledger.NewInstance(uuid.Must(uuid.NewV4()), tpl, on)) == nil {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
}

func TestStore_CategoryTarget(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := uuid.Must(uuid.NewV4())
	c := ledger.Category{ID: uuid.Must(uuid.NewV4()), UserID: owner, Name: "Groceries", Kind: ledger.KindExpense}
	require.NoError(t, s.InsertCategory(ctx, c))
	target := int64(50000)

	require.NoError(t, s.UpdateCategoryTarget(ctx, owner, c.ID, &target))
	target = 1

	got, err := s.QueryCategories(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].BudgetTarget)
	assert.Equal(t, int64(50000), *got[0].BudgetTarget)
	assert.ErrorIs(t, s.UpdateCategoryTarget(ctx, uuid.Must(uuid.NewV4()), c.ID, nil), storage.ErrNotFound)
}

func TestStore_TemplatesActiveOnly(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := uuid.Must(uuid.NewV4())
	active := ledger.Template{ID: uuid.Must(uuid.NewV4()), UserID: owner, Active: true, Rule: ledger.Rule{Anchor: ledger.Date(2024, 1, 1)}}
	paused := ledger.Template{ID: uuid.Must(uuid.NewV4()), UserID: owner, Active: true, Rule: ledger.Rule{Anchor: ledger.Date(2024, 2, 1)}}
	require.NoError(t, s.InsertTemplate(ctx, active))
	require.NoError(t, s.InsertTemplate(ctx, paused))
	require.NoError(t, s.SetTemplateActive(ctx, owner, paused.ID, false))

	onlyActive, err := s.QueryTemplates(ctx, owner, true)
	require.NoError(t, err)
	all, err := s.QueryTemplates(ctx, owner, false)
	require.NoError(t, err)

	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)
	assert.Len(t, all, 2)
}
