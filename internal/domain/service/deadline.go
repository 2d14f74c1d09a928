package service

import (
	"context"
	"errors"
	"time"
)

// DefaultBudget is how long a request waits for a human before giving up.
const DefaultBudget = 30 * time.Minute

// ErrTimedOut reports that the deadline elapsed before the operation
// finished. It is an outcome rather than a failure.
var ErrTimedOut = errors.New("timed out waiting for a response")

type raceResult[T any] struct {
	val T
	err error
}

// RaceWithDeadline runs op concurrently with a timer of the given budget.
// If op finishes first its result is returned. If the timer fires first,
// onExpire is called exactly once before ErrTimedOut is returned; op is
// abandoned and its eventual result discarded, so onExpire must be what
// unblocks it. Cancelling ctx abandons op the same way and returns ctx.Err().
func RaceWithDeadline[T any](ctx context.Context, budget time.Duration, op func(context.Context) (T, error), onExpire func()) (T, error) {
	done := make(chan raceResult[T], 1)
	go func() {
		v, err := op(ctx)
		done <- raceResult[T]{val: v, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.val, r.err
	case <-timer.C:
		onExpire()
		return zero, ErrTimedOut
	case <-ctx.Done():
		onExpire()
		return zero, ctx.Err()
	}
}
