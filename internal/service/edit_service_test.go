package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/memory"
)

func createGroceries(t *testing.T, svc *LedgerService, user uuid.UUID, amount int64) (*ledger.Category, *ledger.Transaction) {
	t.Helper()
	groceries := createCategory(t, svc, user, "Groceries", ledger.KindExpense, target(50000))
	tx, err := svc.CreateTransaction(context.Background(), user, NewTransaction{
		CategoryID:  uuid.NullUUID{UUID: groceries.ID, Valid: true},
		Amount:      amount,
		Description: "market",
		OccurredOn:  ledger.Date(2024, 3, 9),
	})
	require.NoError(t, err)
	return groceries, tx
}

// -- CreateTransaction tests --

func TestCreateTransaction_SignMismatch(t *testing.T) {
	svc, _, user := newMemoryLedger(t)
	groceries := createCategory(t, svc, user, "Groceries", ledger.KindExpense, nil)

	_, err := svc.CreateTransaction(context.Background(), user, NewTransaction{
		CategoryID: uuid.NullUUID{UUID: groceries.ID, Valid: true},
		Amount:     2500,
		OccurredOn: ledger.Date(2024, 3, 9),
	})

	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestCreateTransaction_UnknownCategory(t *testing.T) {
	svc, _, user := newMemoryLedger(t)

	_, err := svc.CreateTransaction(context.Background(), user, NewTransaction{
		CategoryID: uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true},
		Amount:     -100,
		OccurredOn: ledger.Date(2024, 3, 9),
	})

	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestCreateTransaction_Uncategorized(t *testing.T) {
	svc, _, user := newMemoryLedger(t)

	tx, err := svc.CreateTransaction(context.Background(), user, NewTransaction{
		Amount:     -100,
		OccurredOn: ledger.Date(2024, 3, 9),
	})

	require.NoError(t, err)
	assert.Equal(t, ledger.Uncategorized, tx.Bucket())
}

// -- ApplyEdit tests --

func TestApplyEdit_UpdatesFields(t *testing.T) {
	svc, store, user := newMemoryLedger(t)
	_, tx := createGroceries(t, svc, user, -4000)
	ctx := context.Background()

	updated, err := svc.ApplyEdit(ctx, user, tx.ID, TransactionPatch{
		Amount:      omit.From(int64(-4500)),
		Description: omit.From("farmers market"),
		OccurredOn:  omit.From(ledger.Date(2024, 3, 10)),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(-4500), updated.Amount)
	stored, err := store.FindTransaction(ctx, user, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "farmers market", stored.Description)
	assert.Equal(t, ledger.Date(2024, 3, 10), stored.OccurredOn)
	assert.Equal(t, tx.CategoryID, stored.CategoryID)
}

func TestApplyEdit_ClearsCategory(t *testing.T) {
	svc, _, user := newMemoryLedger(t)
	_, tx := createGroceries(t, svc, user, -4000)

	updated, err := svc.ApplyEdit(context.Background(), user, tx.ID, TransactionPatch{
		CategoryID: omitnull.FromPtr[uuid.UUID](nil),
	})

	require.NoError(t, err)
	assert.False(t, updated.CategoryID.Valid)
}

func TestApplyEdit_SignMismatchLeavesRowUnchanged(t *testing.T) {
	svc, store, user := newMemoryLedger(t)
	_, tx := createGroceries(t, svc, user, -4000)
	ctx := context.Background()

	_, err := svc.ApplyEdit(ctx, user, tx.ID, TransactionPatch{Amount: omit.From(int64(4000))})

	assert.ErrorIs(t, err, ledger.ErrValidation)
	stored, err := store.FindTransaction(ctx, user, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-4000), stored.Amount)
}

func TestApplyEdit_MoveToIncomeCategoryRejected(t *testing.T) {
	svc, _, user := newMemoryLedger(t)
	_, tx := createGroceries(t, svc, user, -4000)
	salary := createCategory(t, svc, user, "Salary", ledger.KindIncome, nil)

	_, err := svc.ApplyEdit(context.Background(), user, tx.ID, TransactionPatch{
		CategoryID: omitnull.From(salary.ID),
	})

	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestApplyEdit_EmptyPatchReturnsCurrent(t *testing.T) {
	svc, _, user := newMemoryLedger(t)
	_, tx := createGroceries(t, svc, user, -4000)

	got, err := svc.ApplyEdit(context.Background(), user, tx.ID, TransactionPatch{})

	require.NoError(t, err)
	assert.Equal(t, tx.Amount, got.Amount)
	assert.Equal(t, tx.UpdatedAt, got.UpdatedAt)
}

func TestApplyEdit_NotFound(t *testing.T) {
	svc, _, user := newMemoryLedger(t)
	_, tx := createGroceries(t, svc, user, -4000)
	ctx := context.Background()
	patch := TransactionPatch{Amount: omit.From(int64(-1))}

	_, err := svc.ApplyEdit(ctx, user, uuid.Must(uuid.NewV4()), patch)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = svc.ApplyEdit(ctx, uuid.Must(uuid.NewV4()), tx.ID, patch)
	assert.ErrorIs(t, err, ledger.ErrNotFound, "another user's transaction")

	_, err = svc.BulkDelete(ctx, user, []uuid.UUID{tx.ID})
	require.NoError(t, err)
	_, err = svc.ApplyEdit(ctx, user, tx.ID, patch)
	assert.ErrorIs(t, err, ledger.ErrNotFound, "deleted transaction")
}

func TestApplyEdit_StorageError(t *testing.T) {
	store := new(mockStore)
	user, id := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	store.On("FindTransaction", mock.Anything, user, id).Return(nil, errors.New("timeout"))

	_, err := newTestLedger(t, store).ApplyEdit(context.Background(), user, id, TransactionPatch{Amount: omit.From(int64(-1))})

	assert.ErrorIs(t, err, ledger.ErrStorage)
	store.AssertExpectations(t)
}

func TestApplyEdit_RowVanishedBeforeUpdate(t *testing.T) {
	store := new(mockStore)
	user, id := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	current := &ledger.Transaction{ID: id, UserID: user, Amount: -100, OccurredOn: ledger.Date(2024, 3, 1)}
	store.On("FindTransaction", mock.Anything, user, id).Return(current, nil)
	store.On("QueryCategories", mock.Anything, user).Return([]ledger.Category{}, nil)
	store.On("UpdateTransaction", mock.Anything, mock.Anything, mock.Anything).Return(storage.ErrNotFound)

	_, err := newTestLedger(t, store).ApplyEdit(context.Background(), user, id, TransactionPatch{Amount: omit.From(int64(-200))})

	assert.ErrorIs(t, err, ledger.ErrNotFound)
	store.AssertExpectations(t)
}

func TestApplyEdit_PersistentConflictGivesUp(t *testing.T) {
	store := new(mockStore)
	user, id := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	current := &ledger.Transaction{ID: id, UserID: user, Amount: -100, OccurredOn: ledger.Date(2024, 3, 1)}
	store.On("FindTransaction", mock.Anything, user, id).Return(current, nil).Times(editAttempts)
	store.On("QueryCategories", mock.Anything, user).Return([]ledger.Category{}, nil).Once()
	store.On("UpdateTransaction", mock.Anything, mock.Anything, current.UpdatedAt).Return(storage.ErrConflict).Times(editAttempts)

	_, err := newTestLedger(t, store).ApplyEdit(context.Background(), user, id, TransactionPatch{Amount: omit.From(int64(-200))})

	assert.ErrorIs(t, err, ledger.ErrStorage)
	assert.ErrorIs(t, err, storage.ErrConflict)
	store.AssertExpectations(t)
}

// interleavedWriter lets another process edit the row right before the first
// update of this one lands.
type interleavedWriter struct {
	*memory.Store
	once  sync.Once
	write func()
}

func (s *interleavedWriter) UpdateTransaction(ctx context.Context, tx ledger.Transaction, prev time.Time) error {
	s.once.Do(s.write)
	return s.Store.UpdateTransaction(ctx, tx, prev)
}

func TestApplyEdit_KeepsEditFromAnotherProcess(t *testing.T) {
	ctx := context.Background()
	store := &interleavedWriter{Store: memory.NewStore()}
	svc := newTestLedger(t, store)
	other := newTestLedger(t, store.Store)
	user := uuid.Must(uuid.NewV4())
	_, tx := createGroceries(t, svc, user, -4000)
	store.write = func() {
		_, err := other.ApplyEdit(ctx, user, tx.ID, TransactionPatch{Description: omit.From("farmers market")})
		require.NoError(t, err)
	}

	updated, err := svc.ApplyEdit(ctx, user, tx.ID, TransactionPatch{Amount: omit.From(int64(-5000))})

	require.NoError(t, err)
	assert.Equal(t, int64(-5000), updated.Amount)
	assert.Equal(t, "farmers market", updated.Description)

	stored, err := store.FindTransaction(ctx, user, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), stored.Amount)
	assert.Equal(t, "farmers market", stored.Description)
}

// -- ApplyBulkEdit tests --

func TestApplyBulkEdit_PartialFailures(t *testing.T) {
	svc, store, user := newMemoryLedger(t)
	_, first := createGroceries(t, svc, user, -4000)
	second, err := svc.CreateTransaction(context.Background(), user, NewTransaction{
		CategoryID: first.CategoryID,
		Amount:     -900,
		OccurredOn: ledger.Date(2024, 3, 11),
	})
	require.NoError(t, err)
	missing := uuid.Must(uuid.NewV4())
	ctx := context.Background()

	result, err := svc.ApplyBulkEdit(ctx, user, []Edit{
		{ID: first.ID, Patch: TransactionPatch{Amount: omit.From(int64(-4100))}},
		{ID: missing, Patch: TransactionPatch{Amount: omit.From(int64(-1))}},
		{ID: second.ID, Patch: TransactionPatch{Amount: omit.From(int64(900))}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, missing, result.Failures[0].ID)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, ledger.KindNotFound, result.Failures[0].Kind)
	assert.Equal(t, second.ID, result.Failures[1].ID)
	assert.Equal(t, 2, result.Failures[1].Index)
	assert.Equal(t, ledger.KindValidation, result.Failures[1].Kind)

	stored, err := store.FindTransaction(ctx, user, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-4100), stored.Amount)
	stored, err = store.FindTransaction(ctx, user, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-900), stored.Amount)
}

func TestApplyBulkEdit_SameTransactionInOrder(t *testing.T) {
	svc, store, user := newMemoryLedger(t)
	_, tx := createGroceries(t, svc, user, -4000)
	ctx := context.Background()

	edits := make([]Edit, 0, 20)
	for i := 1; i <= 20; i++ {
		edits = append(edits, Edit{ID: tx.ID, Patch: TransactionPatch{Amount: omit.From(int64(-i))}})
	}
	result, err := svc.ApplyBulkEdit(ctx, user, edits)

	require.NoError(t, err)
	assert.Equal(t, 20, result.Applied)
	stored, err := store.FindTransaction(ctx, user, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-20), stored.Amount)
}

func TestApplyBulkEdit_Empty(t *testing.T) {
	svc, _, user := newMemoryLedger(t)

	result, err := svc.ApplyBulkEdit(context.Background(), user, nil)

	require.NoError(t, err)
	assert.Zero(t, result.Applied)
	assert.Empty(t, result.Failures)
}

func TestApplyBulkEdit_CancelledContext(t *testing.T) {
	svc, _, user := newMemoryLedger(t)
	_, tx := createGroceries(t, svc, user, -4000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.ApplyBulkEdit(ctx, user, []Edit{{ID: tx.ID, Patch: TransactionPatch{Amount: omit.From(int64(-1))}}})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Zero(t, res.Applied)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, tx.ID, res.Failures[0].ID)
	assert.Equal(t, ledger.KindStorage, res.Failures[0].Kind)
}

// cancelAfterUpdate cancels the request context once a row has been written.
type cancelAfterUpdate struct {
	*memory.Store
	cancel context.CancelFunc
}

func (s *cancelAfterUpdate) UpdateTransaction(ctx context.Context, tx ledger.Transaction, prev time.Time) error {
	err := s.Store.UpdateTransaction(ctx, tx, prev)
	s.cancel()
	return err
}

func TestApplyBulkEdit_CancelledMidBatchReportsWrittenEdits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &cancelAfterUpdate{Store: memory.NewStore(), cancel: cancel}
	svc := newTestLedger(t, store)
	user := uuid.Must(uuid.NewV4())
	_, tx := createGroceries(t, svc, user, -4000)

	res, err := svc.ApplyBulkEdit(ctx, user, []Edit{
		{ID: tx.ID, Patch: TransactionPatch{Amount: omit.From(int64(-10))}},
		{ID: tx.ID, Patch: TransactionPatch{Amount: omit.From(int64(-20))}},
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Applied)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, int64(-10), res.Updated[0].Amount)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Index)

	stored, err := store.FindTransaction(context.Background(), user, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-10), stored.Amount)
}

func TestApplyEdit_WriteKeptWhenContextEndsAfterward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &cancelAfterUpdate{Store: memory.NewStore(), cancel: cancel}
	svc := newTestLedger(t, store)
	user := uuid.Must(uuid.NewV4())
	_, tx := createGroceries(t, svc, user, -4000)

	updated, err := svc.ApplyEdit(ctx, user, tx.ID, TransactionPatch{Amount: omit.From(int64(-4500))})

	require.NoError(t, err)
	assert.Equal(t, int64(-4500), updated.Amount)
}

// -- BulkDelete tests --

func TestBulkDelete_OwnedOnly(t *testing.T) {
	svc, store, user := newMemoryLedger(t)
	_, mine := createGroceries(t, svc, user, -4000)
	other := uuid.Must(uuid.NewV4())
	theirs, err := svc.CreateTransaction(context.Background(), other, NewTransaction{Amount: -10, OccurredOn: ledger.Date(2024, 3, 1)})
	require.NoError(t, err)
	ctx := context.Background()

	n, err := svc.BulkDelete(ctx, user, []uuid.UUID{mine.ID, theirs.ID, mine.ID, uuid.Must(uuid.NewV4())})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = store.FindTransaction(ctx, other, theirs.ID)
	assert.NoError(t, err)

	n, err = svc.BulkDelete(ctx, user, []uuid.UUID{mine.ID})
	require.NoError(t, err)
	assert.Zero(t, n, "already deleted")
}

func TestBulkDelete_RemovedFromPeriod(t *testing.T) {
	svc, _, user := newMemoryLedger(t)
	groceries, tx := createGroceries(t, svc, user, -4000)
	ctx := context.Background()
	_, err := svc.ListPeriod(ctx, user, march)
	require.NoError(t, err)

	_, err = svc.BulkDelete(ctx, user, []uuid.UUID{tx.ID})
	require.NoError(t, err)

	view, err := svc.ListPeriod(ctx, user, march)
	require.NoError(t, err)
	assert.Empty(t, view.Transactions)
	assert.Zero(t, view.Aggregates[groceries.ID].Actual)
}

func TestBulkDelete_StorageError(t *testing.T) {
	store := new(mockStore)
	user, id := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	store.On("DeleteTransactions", mock.Anything, user, []uuid.UUID{id}).Return(nil, errors.New("disk full"))

	_, err := newTestLedger(t, store).BulkDelete(context.Background(), user, []uuid.UUID{id, uuid.Nil})

	assert.ErrorIs(t, err, ledger.ErrStorage)
	store.AssertExpectations(t)
}
