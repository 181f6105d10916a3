package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

type flaggedError struct {
	msg       string
	retryable bool
}

func (e *flaggedError) Error() string     { return e.msg }
func (e *flaggedError) IsRetryable() bool { return e.retryable }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.MaxRetries)
	}
	if cfg.InitialDelay != 200*time.Millisecond {
		t.Errorf("expected InitialDelay=200ms, got %v", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 2*time.Second {
		t.Errorf("expected MaxDelay=2s, got %v", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("expected Multiplier=2.0, got %f", cfg.Multiplier)
	}
}

func TestDo_Success(t *testing.T) {
	callCount := 0
	err := Do(context.Background(), fastConfig(), func() error {
		callCount++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestDo_SuccessAfterTransientFailures(t *testing.T) {
	callCount := 0
	err := Do(context.Background(), fastConfig(), func() error {
		callCount++
		if callCount < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error after retries, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("not_found: Team not found")

	callCount := 0
	err := Do(context.Background(), fastConfig(), func() error {
		callCount++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("expected the permanent error back, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected no retries on a permanent error, got %d calls", callCount)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	callCount := 0
	err := Do(context.Background(), fastConfig(), func() error {
		callCount++
		return errors.New("i/o timeout")
	})

	if err == nil {
		t.Fatal("expected the last error after exhausting retries")
	}
	// MaxRetries=3 means one initial attempt plus three retries.
	if callCount != 4 {
		t.Errorf("expected 4 calls, got %d", callCount)
	}
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := &Config{
		MaxRetries:   3,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
		Multiplier:   1.0,
	}

	callCount := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- Do(ctx, cfg, func() error {
			callCount++
			return errors.New("connection reset by peer")
		})
	}()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}

	if callCount != 1 {
		t.Errorf("expected exactly 1 call before the canceled wait, got %d", callCount)
	}
}

func TestDo_RespectsRetryableInterface(t *testing.T) {
	// The message says timeout, but the error declares itself permanent.
	declared := &flaggedError{msg: "scan timeout budget exceeded", retryable: false}

	callCount := 0
	err := Do(context.Background(), fastConfig(), func() error {
		callCount++
		return declared
	})

	if !errors.Is(err, error(declared)) {
		t.Errorf("expected the declared error back, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected interface to override pattern matching, got %d calls", callCount)
	}
}

func TestDo_NilConfigUsesDefaults(t *testing.T) {
	err := Do(context.Background(), nil, func() error { return nil })
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:8090: connect: connection refused"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"client timeout", errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)"), true},
		{"io timeout", errors.New("read tcp: i/o timeout"), true},
		{"no such host", errors.New("dial tcp: lookup engine.internal: no such host"), true},
		{"unexpected eof", errors.New("unexpected EOF"), true},
		{"engine validation error", errors.New("invalid_team_id: Invalid team ID"), false},
		{"engine precondition error", errors.New(`already_merged: team "Rush 2014B" is already merged`), false},
		{"declared retryable", &flaggedError{msg: "engine unavailable", retryable: true}, true},
		{"declared permanent", &flaggedError{msg: "connection refused", retryable: false}, false},
		{"wrapped declared retryable", fmt.Errorf("fetching suggestions: %w", &flaggedError{msg: "engine unavailable", retryable: true}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
