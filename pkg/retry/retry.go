// Package retry implements bounded exponential backoff for callers of the
// engine API. The engine itself never retries; a failed merge or scan
// surfaces immediately. Clients retrying idempotent reads over a flaky
// network are a different matter, and this package is their policy.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// Config defines backoff behavior. A zero Multiplier keeps the delay
// constant; JitterFactor in (0,1] spreads concurrent callers' delays.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64
}

// DefaultConfig suits an interactive client talking to one engine: three
// retries starting at 200ms, capped at 2s, doubling each time.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// RetryableError lets an error declare its own retryability, overriding the
// transport-level pattern matching in IsRetryable.
type RetryableError interface {
	error
	IsRetryable() bool
}

// Do runs fn until it succeeds, returns a permanent error, or exhausts the
// retry budget. Only errors IsRetryable reports as transient consume
// retries; anything else returns immediately. Context cancellation is
// honored during backoff waits.
//
// fn must be safe to invoke more than once. Never wrap a non-idempotent
// call such as a merge request.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(applyJitter(delay, cfg.JitterFactor)):
				if cfg.Multiplier > 0 {
					delay = time.Duration(float64(delay) * cfg.Multiplier)
				}
				if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

// IsRetryable reports whether an error is transient. Errors implementing
// RetryableError anywhere in the chain decide for themselves; otherwise
// only transport-level failures count. Validation and precondition errors
// from the engine are permanent and retrying them just repeats the answer.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"timeout",
		"timed out",
		"temporary failure",
		"unexpected eof",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// applyJitter perturbs delay by up to +/- delay*jitterFactor.
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}
