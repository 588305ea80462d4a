package actions

import "context"

// IAction is a unit of work the operator runs on a worker goroutine.
type IAction interface {
	Perform(ctx context.Context) error
}

// Func adapts a plain function to IAction.
type Func func(ctx context.Context) error

func (f Func) Perform(ctx context.Context) error {
	return f(ctx)
}
