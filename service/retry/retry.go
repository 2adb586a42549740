// Package retry wraps asynchronous network calls with bounded retries and
// exponential backoff. It recovers transient transport failures locally
// and propagates everything else untouched, so callers can keep matching
// on the original error text.
package retry

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Outcome is the tri-state result of evaluating a failed attempt.
type Outcome int

const (
	// OutcomeFailFast means the error is not retryable; propagate it
	// immediately without delay.
	OutcomeFailFast Outcome = iota
	// OutcomeRetry means the error is transient; back off and try again.
	OutcomeRetry
	// OutcomeExhausted means the error is transient but the attempt
	// budget is spent; propagate the last error as-is.
	OutcomeExhausted
)

// Defaults applied by Do when a Config field is zero.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
)

// Config bounds the retry loop. The zero value gets sensible defaults.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry, if set, is invoked before each backoff wait. Callers use
	// it to record retry metrics.
	OnRetry func(attempt int, err error)
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	return c
}

// retryablePatterns are matched case-insensitively against error text.
// They cover network-transport failures, transient HTTP statuses in
// numeric or textual form, and generic timeout wording.
var retryablePatterns = []string{
	"connection reset",
	"connection refused",
	"socket hang up",
	"network error",
	"econnreset",
	"econnrefused",
	"etimedout",
	"timed out",
	"timeout",
	"429",
	"too many requests",
	"502",
	"bad gateway",
	"503",
	"service unavailable",
	"504",
	"gateway timeout",
}

// Retryable reports whether err looks like a transient transport failure.
// It is a pure text classification; it never inspects error types.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Evaluate decides how the retry loop responds to err after the given
// 1-based attempt.
func Evaluate(err error, attempt, maxAttempts int) Outcome {
	if !Retryable(err) {
		return OutcomeFailFast
	}
	if attempt >= maxAttempts {
		return OutcomeExhausted
	}
	return OutcomeRetry
}

// Delay returns the backoff preceding the given 1-based attempt:
// min(base * 2^(attempt-2), max). The first attempt never waits.
func (c Config) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := c.BaseDelay << uint(attempt-2)
	if d > c.MaxDelay || d <= 0 {
		return c.MaxDelay
	}
	return d
}

// Do runs op with the configured retry policy. Non-retryable errors
// propagate on the first failure without any delay; when the attempt
// budget is exhausted, the last attempt's original error propagates
// unwrapped. Backoff waits respect ctx cancellation.
func Do[T any](ctx context.Context, cfg Config, logger *slog.Logger, name string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := cfg.Delay(attempt)
			logger.DebugContext(ctx, "backing off before retry",
				"op", name,
				"attempt", attempt,
				"delay", wait,
			)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		switch Evaluate(err, attempt, cfg.MaxAttempts) {
		case OutcomeFailFast:
			return zero, err
		case OutcomeExhausted:
			logger.WarnContext(ctx, "retry budget exhausted",
				"op", name,
				"attempts", attempt,
				"error", err,
			)
			return zero, err
		}

		logger.WarnContext(ctx, "transient failure, will retry",
			"op", name,
			"attempt", attempt,
			"error", err,
		)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
	}
	return zero, lastErr
}
