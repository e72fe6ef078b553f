package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAttempts is the default attempt budget per call.
	DefaultMaxAttempts = 10
	// DefaultBaseDelay is the default initial delay for exponential backoff.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay is the default backoff delay cap.
	DefaultMaxDelay = 10 * time.Second
	// StandardMultiplier is the multiplier for exponential backoff.
	StandardMultiplier = 2.0
)

// RetryPolicy describes the retry schedule for one call site.
// Delays grow as delay(n) = min(BaseDelay * 2^n, MaxDelay).
// A RetryPolicy is immutable; the zero value is normalized to defaults.
type RetryPolicy struct {
	MaxAttempts uint64
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns the policy applied when a call site does not
// override it: 10 attempts, 1s base delay, 10s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	return p
}

// BackOff builds the backoff schedule for one invocation.
// The schedule is deterministic (no jitter) so observed delays are
// strictly non-decreasing until they hit MaxDelay.
func (p RetryPolicy) BackOff(ctx context.Context) backoff.BackOff {
	p = p.normalized()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	eb.Multiplier = StandardMultiplier
	eb.RandomizationFactor = 0
	eb.MaxInterval = p.MaxDelay
	eb.MaxElapsedTime = 0
	eb.Reset()

	// MaxAttempts counts attempts, WithMaxRetries counts retries after
	// the first attempt.
	return backoff.WithContext(backoff.WithMaxRetries(eb, p.MaxAttempts-1), ctx)
}

// Do executes one remote call under the given policy.
//
// fn is retried while its error classifies as retryable (network/timeout);
// any other classification aborts immediately. When the attempt budget is
// exhausted the last error propagates, classified but with the original
// provider error preserved for unwrapping. Every invocation is logged with
// the operation name, the argument fields carried by logger, the elapsed
// time, and the result or classified error.
func Do[T any](ctx context.Context, logger zerolog.Logger, policy RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	attempts := 0

	operation := func() (T, error) {
		attempts++
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !IsRetryableError(err) {
			var zero T
			return zero, backoff.Permanent(err)
		}
		var zero T
		return zero, err
	}

	notify := func(err error, delay time.Duration) {
		recordRetry(op)
		logger.Warn().
			Str("op", op).
			Int("attempt", attempts).
			Dur("next_delay", delay).
			Err(err).
			Msg("Transient call failure. Retrying after delay")
	}

	v, err := backoff.RetryNotifyWithData(operation, policy.BackOff(ctx), notify)
	elapsed := time.Since(start)

	if err != nil {
		classified := Classify(err)
		recordCall(op, "error", elapsed)
		recordError(op, string(classified.Type))
		logger.Error().
			Str("op", op).
			Int("attempts", attempts).
			Dur("elapsed", elapsed).
			Int("status", classified.HTTPStatus()).
			Str("error_type", string(classified.Type)).
			Err(classified).
			Msg("Call failed")
		var zero T
		return zero, classified
	}

	recordCall(op, "success", elapsed)
	logger.Info().
		Str("op", op).
		Int("attempts", attempts).
		Dur("elapsed", elapsed).
		Interface("result", v).
		Msg("Call completed")
	return v, nil
}

// Wait sleeps for the given delay, respecting context cancellation.
// It reports whether the full delay elapsed.
func Wait(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
