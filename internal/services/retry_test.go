package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRetryRunSucceedsFirstAttempt(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 1, Delay: time.Millisecond, Timeout: time.Second}

	calls := 0
	err := policy.Run(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 1 {
		t.Errorf("want 1 call, got %d", calls)
	}
}

func TestRetryRunRetriesOnlyTimeouts(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 1, Delay: time.Millisecond, Timeout: 10 * time.Millisecond}

	// The first attempt hangs past the timeout; the retry succeeds.
	calls := make(chan struct{}, 4)
	block := make(chan struct{})
	var attempt atomic.Int32
	err := policy.Run(context.Background(), func() error {
		calls <- struct{}{}
		if attempt.Add(1) == 1 {
			<-block
		}
		return nil
	})
	close(block)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(calls); got != 2 {
		t.Errorf("want 2 attempts, got %d", got)
	}
}

func TestRetryRunDoesNotRetryTerminalErrors(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 1, Delay: time.Millisecond, Timeout: time.Second}

	calls := 0
	err := policy.Run(context.Background(), func() error {
		calls++
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("want errBoom, got %v", err)
	}
	if calls != 1 {
		t.Errorf("terminal error must not retry, got %d calls", calls)
	}
}

func TestRetryRunExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 1, Delay: time.Millisecond, Timeout: 5 * time.Millisecond}

	block := make(chan struct{})
	defer close(block)

	calls := make(chan struct{}, 4)
	err := policy.Run(context.Background(), func() error {
		calls <- struct{}{}
		<-block
		return nil
	})
	if !errors.Is(err, ErrAttemptTimeout) {
		t.Fatalf("want ErrAttemptTimeout, got %v", err)
	}
	if got := len(calls); got != 2 {
		t.Errorf("want 2 attempts, got %d", got)
	}
}

func TestRetryRunHonorsContextCancellation(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 1, Delay: time.Minute, Timeout: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	defer close(block)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Run(ctx, func() error {
		<-block
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
