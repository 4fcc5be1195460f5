package services

import (
	"context"
	"errors"
	"time"

	"bar_pos_backend/pkg/utils"
)

// ErrAttemptTimeout marks an attempt that outran the per-attempt deadline.
// The attempt itself keeps running; a retry firing after such a timeout can
// double-write, which is why only sale finalization opts into retrying.
var ErrAttemptTimeout = errors.New("attempt timed out")

// RetryPolicy runs an operation with a per-attempt timeout and a fixed delay
// between attempts. Only timeouts are retried; every other error is terminal.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
	Timeout    time.Duration
}

// DefaultSalePolicy is the policy for sale finalization: one retry after a
// fixed delay, 15 second attempt timeout.
func DefaultSalePolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 1,
		Delay:      500 * time.Millisecond,
		Timeout:    15 * time.Second,
	}
}

// Run executes op, retrying up to MaxRetries times on ErrAttemptTimeout.
func (p RetryPolicy) Run(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			utils.LogInfo("retrying operation", map[string]interface{}{
				"attempt":      attempt + 1,
				"max_attempts": p.MaxRetries + 1,
			})
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = p.runOnce(ctx, op)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, ErrAttemptTimeout) {
			return lastErr
		}
	}
	return lastErr
}

func (p RetryPolicy) runOnce(ctx context.Context, op func() error) error {
	if p.Timeout <= 0 {
		return op()
	}

	done := make(chan error, 1)
	go func() {
		done <- op()
	}()

	timer := time.NewTimer(p.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrAttemptTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
