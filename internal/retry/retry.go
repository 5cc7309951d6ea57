// Package retry wraps read operations with deterministic, bounded retries.
// The ledger gateway budgets requests per second across the whole fleet, so
// throttled reads back off linearly instead of starving sibling loops.
package retry

import (
	"context"
	"errors"
	"time"
)

type Config struct {
	MaxAttempts int
	Base        time.Duration
	Step        time.Duration
	ShouldRetry func(error) bool
}

func DefaultConfig(classify func(error) bool) Config {
	return Config{
		MaxAttempts: 3,
		Base:        time.Second,
		Step:        2 * time.Second,
		ShouldRetry: classify,
	}
}

// Do invokes op, retrying on errors the classifier accepts with a wait of
// base + attempt*step between attempts. Any other error, or exhaustion,
// propagates unchanged.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == attempts-1 || !shouldRetry(ctx, cfg, err) {
			break
		}
		wait := cfg.Base + time.Duration(attempt)*cfg.Step
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

func shouldRetry(ctx context.Context, cfg Config, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if cfg.ShouldRetry == nil {
		return false
	}
	return cfg.ShouldRetry(err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
