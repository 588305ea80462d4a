package operator

import (
	"context"
	"fmt"

	"github.com/carson-networks/budget-ledger/internal/operator/actions"
)

// Operator is the worker that drains one queue. Items sharing a key always land
// on the same queue, so they run in submission order.
type Operator struct {
	queue chan ActionItem
}

func NewOperator(queue chan ActionItem) *Operator {
	return &Operator{queue: queue}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

func (o *Operator) processItem(item ActionItem) {
	if err := item.ctx.Err(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}
	item.response <- ActionItemResponse{err: perform(item.ctx, item.action)}
}

func perform(ctx context.Context, action actions.IAction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return action.Perform(ctx)
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
