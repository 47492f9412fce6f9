package util

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestRetryWithContext(t *testing.T) {
	t.Parallel()

	t.Run("succeeds_after_failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, err := RetryWithContext(context.Background(), 3, func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", fmt.Errorf("attempt %d failed", calls)
			}
			return "done", nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "done" || calls != 3 {
			t.Fatalf("got %q after %d calls", got, calls)
		}
	})

	t.Run("returns_last_error_when_exhausted", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("still broken")
		_, err := RetryWithContext(context.Background(), 2, func(context.Context) (int, error) {
			return 0, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("got %v, want %v", err, wantErr)
		}
	})

	t.Run("never_retries_cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := RetryWithContext(ctx, 5, func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, context.Canceled
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
		if calls != 1 {
			t.Fatalf("got %d calls, want 1", calls)
		}
	})

	t.Run("zero_tries_defaults_to_one", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := RetryWithContext(context.Background(), 0, func(context.Context) (int, error) {
			calls++
			return 42, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Fatalf("got %d calls, want 1", calls)
		}
	})
}

func TestRetryErrWithContext(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryErrWithContext(context.Background(), 3, func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("got %d calls, want 2", calls)
	}
}
