package store

import (
	"context"
	"time"
)

// RetryPolicy is an explicit retry contract: a fixed number of attempts
// with a fixed delay available to whoever sits between them. It is applied
// uniformly to connect, get and set.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// Do runs op up to Attempts times. After a failed attempt that retryable
// admits, between is invoked (to sleep, reconnect, or both) before the next
// try. The last error is returned when the budget is exhausted or the
// error is not retryable.
func (p RetryPolicy) Do(ctx context.Context, op func() error, retryable func(error) bool, between func(attempt int, err error)) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt < attempts && between != nil {
			between(attempt, err)
		}
	}
	return err
}

// Sleep blocks for the policy delay or until the context is done.
func (p RetryPolicy) Sleep(ctx context.Context) {
	if p.Delay <= 0 {
		return
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
