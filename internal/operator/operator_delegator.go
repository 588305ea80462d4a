package operator

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/operator/actions"
)

// ErrStopped is returned by Process once Stop has been called.
var ErrStopped = errors.New("operator stopped")

const queueSize = 1000

// OperatorDelegator owns one queue per worker and routes each action by key.
type OperatorDelegator struct {
	queues   []chan ActionItem
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

func NewOperatorDelegator(numWorkers int) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	queues := make([]chan ActionItem, numWorkers)
	for i := range queues {
		queues[i] = make(chan ActionItem, queueSize)
	}
	return &OperatorDelegator{queues: queues}
}

func (d *OperatorDelegator) Start() {
	for _, queue := range d.queues {
		d.wg.Add(1)
		op := NewOperator(queue)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
}

// Stop closes the queues and waits for queued actions to finish.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		for _, queue := range d.queues {
			close(queue)
		}
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// Process runs action on the worker owning key and waits for its result. Actions
// with the same key never run concurrently.
func (d *OperatorDelegator) Process(ctx context.Context, key uuid.UUID, action actions.IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	if err := d.enqueue(ctx, d.queueFor(key), item); err != nil {
		return err
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *OperatorDelegator) enqueue(ctx context.Context, queue chan ActionItem, item ActionItem) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrStopped
	}
	select {
	case queue <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *OperatorDelegator) queueFor(key uuid.UUID) chan ActionItem {
	h := fnv.New32a()
	_, _ = h.Write(key.Bytes())
	return d.queues[h.Sum32()%uint32(len(d.queues))]
}
