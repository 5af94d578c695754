package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastConfig keeps test runtimes negligible.
func fastConfig() *Config {
	return &Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// retryableError always declares itself retryable.
type retryableError struct{ msg string }

func (e *retryableError) Error() string     { return e.msg }
func (e *retryableError) IsRetryable() bool { return true }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxRetries != 2 {
		t.Errorf("expected MaxRetries=2, got %d", cfg.MaxRetries)
	}
	if cfg.InitialDelay != 500*time.Millisecond {
		t.Errorf("expected InitialDelay=500ms, got %v", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 5*time.Second {
		t.Errorf("expected MaxDelay=5s, got %v", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("expected Multiplier=2.0, got %f", cfg.Multiplier)
	}
}

func TestDoWithResult_Success(t *testing.T) {
	callCount := 0
	result, err := DoWithResult(context.Background(), fastConfig(), func() (string, error) {
		callCount++
		return "done", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "done" {
		t.Errorf("expected result 'done', got %q", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestDoWithResult_SuccessAfterRetries(t *testing.T) {
	callCount := 0
	result, err := DoWithResult(context.Background(), fastConfig(), func() (int, error) {
		callCount++
		if callCount < 3 {
			return 0, &retryableError{msg: "transient"}
		}
		return 42, nil
	})

	if err != nil {
		t.Errorf("expected no error after retries, got %v", err)
	}
	if result != 42 {
		t.Errorf("expected result 42, got %d", result)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestDoWithResult_MaxRetriesExhausted(t *testing.T) {
	callCount := 0
	_, err := DoWithResult(context.Background(), fastConfig(), func() (string, error) {
		callCount++
		return "", &retryableError{msg: "still failing"}
	})

	if err == nil {
		t.Error("expected error after exhausting retries")
	}
	// Initial attempt plus MaxRetries.
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestDoWithResult_NonRetryableReturnsImmediately(t *testing.T) {
	callCount := 0
	_, err := DoWithResult(context.Background(), fastConfig(), func() (string, error) {
		callCount++
		return "", errors.New("permanent failure")
	})

	if err == nil {
		t.Error("expected error")
	}
	if callCount != 1 {
		t.Errorf("expected exactly 1 call for non-retryable error, got %d", callCount)
	}
}

func TestDoWithResult_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxRetries:   5,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
		Multiplier:   2.0,
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := DoWithResult(ctx, cfg, func() (string, error) {
		return "", &retryableError{msg: "transient"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDoWithResult_NilConfigUsesDefaults(t *testing.T) {
	result, err := DoWithResult(context.Background(), nil, func() (bool, error) {
		return true, nil
	})

	if err != nil || !result {
		t.Errorf("expected success with nil config, got %v %v", result, err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"declared retryable", &retryableError{msg: "whatever"}, true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"rate limit", errors.New("429 Too Many Requests"), true},
		{"service unavailable", errors.New("503 Service Unavailable"), true},
		{"timeout", errors.New("i/o timeout"), true},
		{"permanent", errors.New("invalid argument"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
