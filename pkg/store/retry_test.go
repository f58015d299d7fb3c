package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/matzehuels/stylegraph/pkg/errors"
)

func withFastRetry(t *testing.T) {
	t.Helper()
	old := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = old })
}

func TestRetryWithBackoff(t *testing.T) {
	withFastRetry(t)
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls, retries := 0, 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(stderrors.New("flaky"))
			}
			return nil
		}, func(int, error) { retries++ })
		if err != nil {
			t.Fatalf("RetryWithBackoff() error: %v", err)
		}
		if calls != 3 || retries != 2 {
			t.Errorf("calls = %d, retries = %d, want 3 and 2", calls, retries)
		}
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		calls := 0
		perm := stderrors.New("permanent")
		err := RetryWithBackoff(ctx, func() error { calls++; return perm }, nil)
		if !stderrors.Is(err, perm) {
			t.Errorf("RetryWithBackoff() error = %v, want %v", err, perm)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("gives up with network error", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return Retryable(stderrors.New("down")) }, nil)
		if !errors.Is(err, errors.ErrCodeNetwork) {
			t.Errorf("RetryWithBackoff() error = %v, want NETWORK_ERROR", err)
		}
		if !IsRetryable(err) {
			t.Error("exhausted retry error should stay retryable")
		}
	})

	t.Run("context cancellation stops retries", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cctx, func() error { return Retryable(stderrors.New("down")) }, nil)
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("RetryWithBackoff() error = %v, want context.Canceled", err)
		}
	})
}

func TestRetryableNil(t *testing.T) {
	if err := Retryable(nil); err != nil {
		t.Errorf("Retryable(nil) = %v, want nil", err)
	}
	if IsRetryable(stderrors.New("x")) {
		t.Error("IsRetryable(plain error) = true")
	}
}
