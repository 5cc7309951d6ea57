package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThrottled = errors.New("throttled")

// fastConfig retries without waiting so tests stay instant.
func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		ShouldRetry: func(err error) bool { return errors.Is(err, errThrottled) },
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	out, err := Do(context.Background(), fastConfig(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errThrottled
		}
		return "ship", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ship", out)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("boom")
	calls := 0
	_, err := Do(context.Background(), fastConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, errThrottled
	})
	require.ErrorIs(t, err, errThrottled)
	assert.Equal(t, 3, calls)
}

func TestDoCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, fastConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, errThrottled
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDoTreatsZeroAttemptsAsOne(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(0), func(ctx context.Context) (int, error) {
		calls++
		return 0, errThrottled
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDefaultConfigShape(t *testing.T) {
	cfg := DefaultConfig(func(error) bool { return true })
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.ShouldRetry)
}
