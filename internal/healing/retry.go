package healing

import (
	"context"
	"time"

	"ui-harness/pkg/apperr"
)

// Retry runs fn up to attempts times with a fixed delay between tries. It
// addresses transient flakiness of a single strategy, not locator drift;
// alternate-locator selection belongs to TryInOrder. The delay wait is
// context-aware.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	const op = "healing.Retry"

	if attempts < 1 {
		return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "attempts_below_one")
	}

	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperr.Wrap(op, apperr.CodeTimeout, ctx.Err(), map[string]any{
					apperr.MetaReason: "context_cancelled",
				})
			case <-time.After(delay):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}

// RetryValue is Retry for operations that produce a result.
func RetryValue[T any](ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T

	err := Retry(ctx, attempts, delay, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)

		return innerErr
	})

	return result, err
}
