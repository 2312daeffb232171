package executor

import (
	"context"
	"fmt"
	"time"

	"sutra/internal/task"
)

// DefaultSimulatedDelay is how long SimulatedRunner pretends to work.
const DefaultSimulatedDelay = 100 * time.Millisecond

// Runner performs the effect of a single action.
//
// The returned string is recorded as the action's result. A non-nil error
// marks only that action as failed.
type Runner interface {
	Run(ctx context.Context, action task.Action) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, action task.Action) (string, error)

// Run calls f(ctx, action).
func (f RunnerFunc) Run(ctx context.Context, action task.Action) (string, error) {
	return f(ctx, action)
}

// SimulatedRunner stands in for real integrations: it waits Delay and
// reports the action as executed.
type SimulatedRunner struct {
	Delay time.Duration
}

// Run waits for the configured delay or until ctx is done.
func (r SimulatedRunner) Run(ctx context.Context, action task.Action) (string, error) {
	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Sprintf("Executed %s action", action.ActionType()), nil
}
