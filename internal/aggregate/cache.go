package aggregate

import (
	"container/list"
	"maps"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// Cache holds computed aggregates keyed by (user, category, period). A period is
// complete while no write has touched any of its categories since it was stored;
// only complete periods are served as a whole. Entries beyond maxSize periods are
// evicted least recently used first.
//
// Every invalidation bumps the user's generation. A reader takes Generation before
// it reads the store and hands it to Put, so aggregates computed from a read that
// raced a write are never stored.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	lru    *list.List
	byUser map[uuid.UUID]map[string]*list.Element
	gens   map[uuid.UUID]uint64
}

type periodEntry struct {
	user      uuid.UUID
	period    ledger.Period
	aggs      map[uuid.UUID]Aggregate
	complete  bool
	expiresAt time.Time
}

// NewCache creates a cache holding at most maxSize periods. A ttl of zero keeps
// entries until they are evicted or invalidated.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		lru:     list.New(),
		byUser:  make(map[uuid.UUID]map[string]*list.Element),
		gens:    make(map[uuid.UUID]uint64),
	}
}

// Generation returns the number of invalidations seen for user.
func (c *Cache) Generation(user uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[user]
}

// Put stores the full aggregate map of one period and marks it complete. Nothing
// is stored and false is returned when user was invalidated after gen was taken.
func (c *Cache) Put(user uuid.UUID, period ledger.Period, aggs map[uuid.UUID]Aggregate, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[user] != gen {
		return false
	}

	entry := &periodEntry{
		user:     user,
		period:   period,
		aggs:     maps.Clone(aggs),
		complete: true,
	}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}

	periods := c.byUser[user]
	if periods == nil {
		periods = make(map[string]*list.Element)
		c.byUser[user] = periods
	}
	if elem, ok := periods[period.Key()]; ok {
		elem.Value = entry
		c.lru.MoveToFront(elem)
		return true
	}
	periods[period.Key()] = c.lru.PushFront(entry)

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	return true
}

// get returns the cached aggregate of one category in one period.
func (c *Cache) get(user, category uuid.UUID, period ledger.Period) (Aggregate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.lookup(user, period)
	if entry == nil {
		return Aggregate{}, false
	}
	agg, ok := entry.aggs[category]
	return agg, ok
}

// GetPeriod returns a copy of the full aggregate map of a period, only if no write
// has invalidated any part of it.
func (c *Cache) GetPeriod(user uuid.UUID, period ledger.Period) (map[uuid.UUID]Aggregate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.lookup(user, period)
	if entry == nil || !entry.complete {
		return nil, false
	}
	return maps.Clone(entry.aggs), true
}

// Invalidate drops the aggregate of category in every cached period of user that
// contains date.
func (c *Cache) Invalidate(user, category uuid.UUID, date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[user]++
	for _, elem := range c.byUser[user] {
		entry := elem.Value.(*periodEntry)
		if !entry.period.Contains(date) {
			continue
		}
		delete(entry.aggs, category)
		entry.complete = false
	}
}

// InvalidateCategory drops the aggregates of category in every cached period of
// user. Used when the category itself changes, e.g. its budget target.
func (c *Cache) InvalidateCategory(user, category uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[user]++
	for _, elem := range c.byUser[user] {
		entry := elem.Value.(*periodEntry)
		delete(entry.aggs, category)
		entry.complete = false
	}
}

// InvalidateUser drops everything cached for user.
func (c *Cache) InvalidateUser(user uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[user]++
	for _, elem := range c.byUser[user] {
		c.removeElement(elem)
	}
}

// Len returns the number of cached periods.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) lookup(user uuid.UUID, period ledger.Period) *periodEntry {
	elem, ok := c.byUser[user][period.Key()]
	if !ok {
		return nil
	}
	entry := elem.Value.(*periodEntry)
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.removeElement(elem)
		return nil
	}
	c.lru.MoveToFront(elem)
	return entry
}

func (c *Cache) removeElement(elem *list.Element) {
	entry := elem.Value.(*periodEntry)
	if periods := c.byUser[entry.user]; periods != nil {
		delete(periods, entry.period.Key())
		if len(periods) == 0 {
			delete(c.byUser, entry.user)
		}
	}
	c.lru.Remove(elem)
}
