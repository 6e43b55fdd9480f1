package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
)

func testConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     &LinearBackoff{BaseDelay: time.Millisecond, Increment: 0, MaxDelay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.Transient("scroll step failed", fmt.Errorf("timeout"))
		}
		return nil
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.Transient("scroll step failed", fmt.Errorf("timeout"))
	}, testConfig())

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
}

func TestDoStopsOnFatalError(t *testing.T) {
	calls := 0
	authErr := errs.AuthRequired("login wall")
	err := Do(func() error {
		calls++
		return authErr
	}, testConfig())

	assert.Equal(t, 1, calls, "auth errors must not be retried")
	assert.True(t, errs.IsAuthRequired(err))
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := testConfig()
	cfg.Context = ctx
	cfg.Backoff = &LinearBackoff{BaseDelay: time.Minute, Increment: 0, MaxDelay: time.Minute}

	done := make(chan error, 1)
	go func() {
		done <- Do(func() error {
			return errs.Transient("never succeeds", nil)
		}, cfg)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errs.Transient("flaky", nil)
		}
		return 42, nil
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestExponentialBackoffGrowth(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, time.Second, eb.NextDelay(1))
	assert.Equal(t, 2*time.Second, eb.NextDelay(2))
	assert.Equal(t, 4*time.Second, eb.NextDelay(3))
	assert.Equal(t, 10*time.Second, eb.NextDelay(10), "capped at max delay")
	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
}

func TestLinearBackoffGrowth(t *testing.T) {
	lb := &LinearBackoff{BaseDelay: time.Second, Increment: time.Second, MaxDelay: 3 * time.Second}

	assert.Equal(t, time.Second, lb.NextDelay(1))
	assert.Equal(t, 2*time.Second, lb.NextDelay(2))
	assert.Equal(t, 3*time.Second, lb.NextDelay(5), "capped at max delay")
}
