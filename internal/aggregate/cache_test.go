package aggregate

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

func cached(categories ...uuid.UUID) map[uuid.UUID]Aggregate {
	out := make(map[uuid.UUID]Aggregate, len(categories))
	for i, id := range categories {
		out[id] = Aggregate{CategoryID: id, Actual: int64(-100 * (i + 1))}
	}
	return out
}

func TestCache_PutAndGetPeriod(t *testing.T) {
	c := NewCache(8, 0)
	user, groceries := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	c.Put(user, march, cached(groceries), 0)

	got, ok := c.GetPeriod(user, march)
	require.True(t, ok)
	assert.Equal(t, int64(-100), got[groceries].Actual)

	_, ok = c.GetPeriod(uuid.Must(uuid.NewV4()), march)
	assert.False(t, ok)
}

func TestCache_GetPeriodReturnsCopy(t *testing.T) {
	c := NewCache(8, 0)
	user, groceries := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	c.Put(user, march, cached(groceries), 0)

	got, _ := c.GetPeriod(user, march)
	delete(got, groceries)

	again, ok := c.GetPeriod(user, march)
	require.True(t, ok)
	assert.Contains(t, again, groceries)
}

func TestCache_InvalidateTouchesOnlyMatchingKey(t *testing.T) {
	c := NewCache(8, 0)
	user := uuid.Must(uuid.NewV4())
	groceries, fuel := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	april := ledger.PeriodOf(ledger.Date(2024, 4, 1), ledger.Month)
	c.Put(user, march, cached(groceries, fuel), 0)
	c.Put(user, april, cached(groceries, fuel), 0)

	c.Invalidate(user, groceries, ledger.Date(2024, 3, 12))

	_, ok := c.get(user, groceries, march)
	assert.False(t, ok)
	_, ok = c.get(user, fuel, march)
	assert.True(t, ok)
	_, ok = c.GetPeriod(user, march)
	assert.False(t, ok, "march is no longer complete")
	_, ok = c.GetPeriod(user, april)
	assert.True(t, ok, "april was not touched")
}

func TestCache_InvalidateCategory(t *testing.T) {
	c := NewCache(8, 0)
	user, groceries := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	c.Put(user, march, cached(groceries), 0)

	c.InvalidateCategory(user, groceries)

	_, ok := c.get(user, groceries, march)
	assert.False(t, ok)
}

func TestCache_InvalidateUser(t *testing.T) {
	c := NewCache(8, 0)
	alice, bob := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	c.Put(alice, march, cached(uuid.Must(uuid.NewV4())), 0)
	c.Put(bob, march, cached(uuid.Must(uuid.NewV4())), 0)

	c.InvalidateUser(alice)

	_, ok := c.GetPeriod(alice, march)
	assert.False(t, ok)
	_, ok = c.GetPeriod(bob, march)
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, 0)
	user := uuid.Must(uuid.NewV4())
	jan := ledger.PeriodOf(ledger.Date(2024, 1, 1), ledger.Month)
	feb := ledger.PeriodOf(ledger.Date(2024, 2, 1), ledger.Month)
	c.Put(user, jan, cached(), 0)
	c.Put(user, feb, cached(), 0)
	c.GetPeriod(user, jan)

	c.Put(user, march, cached(), 0)

	assert.Equal(t, 2, c.Len())
	_, ok := c.GetPeriod(user, feb)
	assert.False(t, ok)
	_, ok = c.GetPeriod(user, jan)
	assert.True(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(8, time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	user := uuid.Must(uuid.NewV4())
	c.Put(user, march, cached(), 0)

	now = now.Add(2 * time.Minute)

	_, ok := c.GetPeriod(user, march)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_PutSkippedAfterConcurrentInvalidate(t *testing.T) {
	c := NewCache(8, 0)
	user, groceries := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	gen := c.Generation(user)
	c.Invalidate(user, groceries, ledger.Date(2024, 3, 12))

	assert.False(t, c.Put(user, march, cached(groceries), gen))
	_, ok := c.GetPeriod(user, march)
	assert.False(t, ok)

	assert.True(t, c.Put(user, march, cached(groceries), c.Generation(user)))
	_, ok = c.GetPeriod(user, march)
	assert.True(t, ok)
}

func TestCache_GenerationIsPerUser(t *testing.T) {
	c := NewCache(8, 0)
	alice, bob := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	c.InvalidateCategory(alice, uuid.Must(uuid.NewV4()))
	c.InvalidateUser(alice)

	assert.Equal(t, uint64(2), c.Generation(alice))
	assert.Equal(t, uint64(0), c.Generation(bob))
}
