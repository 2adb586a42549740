package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	ctx := context.Background()
	calls := 0

	v, err := Do(ctx, Config{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}, testLogger(), "fetch",
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("read tcp 10.0.0.1:443: connection reset by peer")
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls, "two failures then success means exactly 3 invocations")
}

func TestDo_NonRetryableFailsFast(t *testing.T) {
	ctx := context.Background()
	calls := 0
	wantErr := errors.New("invalid param: unknown signature")

	start := time.Now()
	_, err := Do(ctx, Config{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond}, testLogger(), "fetch",
		func(ctx context.Context) (int, error) {
			calls++
			return 0, wantErr
		})

	require.Error(t, err)
	assert.Equal(t, wantErr, err, "original error propagates untouched")
	assert.Equal(t, 1, calls, "validation errors get exactly one attempt")
	assert.Less(t, time.Since(start), 100*time.Millisecond, "fail-fast must not wait")
}

func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	ctx := context.Background()
	calls := 0
	wantErr := errors.New("HTTP 503 service unavailable")

	_, err := Do(ctx, Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}, testLogger(), "fetch",
		func(ctx context.Context) (int, error) {
			calls++
			return 0, wantErr
		})

	require.Error(t, err)
	assert.Equal(t, wantErr, err, "last attempt's error must stay message-matchable")
	assert.Equal(t, 3, calls)
}

func TestDo_BackoffGrowsBetweenAttempts(t *testing.T) {
	ctx := context.Background()
	var times []time.Time

	_, err := Do(ctx, Config{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}, testLogger(), "fetch",
		func(ctx context.Context) (int, error) {
			times = append(times, time.Now())
			return 0, errors.New("request timeout")
		})

	require.Error(t, err)
	require.Len(t, times, 3)

	gap2 := times[1].Sub(times[0])
	gap3 := times[2].Sub(times[1])
	assert.GreaterOrEqual(t, gap2, 40*time.Millisecond, "first backoff should be near the 50ms base")
	assert.Greater(t, gap3, gap2, "backoff must grow exponentially")
}

func TestDo_FirstAttemptNeverWaits(t *testing.T) {
	ctx := context.Background()
	start := time.Now()
	v, err := Do(ctx, Config{BaseDelay: time.Second}, testLogger(), "fetch",
		func(ctx context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, Config{MaxAttempts: 5, BaseDelay: 5 * time.Second}, testLogger(), "fetch",
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("connection refused")
		})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryHook(t *testing.T) {
	ctx := context.Background()
	retries := 0

	cfg := Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		OnRetry:     func(attempt int, err error) { retries++ },
	}
	_, err := Do(ctx, cfg, testLogger(), "fetch",
		func(ctx context.Context) (int, error) { return 0, errors.New("504 gateway timeout") })

	require.Error(t, err)
	assert.Equal(t, 2, retries, "hook fires for each retryable failure except the exhausting one")
}

func TestDelay_CappedAtMax(t *testing.T) {
	cfg := Config{BaseDelay: 50 * time.Millisecond, MaxDelay: 200 * time.Millisecond}
	assert.Equal(t, time.Duration(0), cfg.Delay(1))
	assert.Equal(t, 50*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 100*time.Millisecond, cfg.Delay(3))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(4))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(10), "delay never exceeds the cap")
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		attempt  int
		max      int
		expected Outcome
	}{
		{"connection reset", errors.New("connection reset by peer"), 1, 3, OutcomeRetry},
		{"connection refused", errors.New("dial tcp: connection refused"), 1, 3, OutcomeRetry},
		{"socket hang up", errors.New("socket hang up"), 1, 3, OutcomeRetry},
		{"http 429 numeric", errors.New("server responded with 429"), 1, 3, OutcomeRetry},
		{"http 429 textual", errors.New("Too Many Requests"), 1, 3, OutcomeRetry},
		{"http 502", errors.New("Bad Gateway"), 1, 3, OutcomeRetry},
		{"http 503", errors.New("503 Service Unavailable"), 1, 3, OutcomeRetry},
		{"http 504", errors.New("Gateway Timeout"), 1, 3, OutcomeRetry},
		{"generic timeout", errors.New("context deadline exceeded (timeout)"), 1, 3, OutcomeRetry},
		{"retryable but exhausted", errors.New("connection reset"), 3, 3, OutcomeExhausted},
		{"validation error", errors.New("invalid base58 address"), 1, 3, OutcomeFailFast},
		{"unknown signature", errors.New("signature not found"), 1, 3, OutcomeFailFast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.err, tt.attempt, tt.max))
		})
	}
}
