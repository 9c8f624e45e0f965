package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedBackoff time.Duration

func (f fixedBackoff) Next(int) time.Duration { return time.Duration(f) }

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, Policy{Name: "test_success", Attempts: 5, Backoff: fixedBackoff(time.Millisecond)})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	exhausted := false
	err := Do(context.Background(), func() error {
		calls++
		return fatal
	}, Policy{
		Name:      "test_fatal",
		Attempts:  5,
		Backoff:   fixedBackoff(time.Millisecond),
		Retryable: func(err error) bool { return !errors.Is(err, fatal) },
		OnExhaust: func(error) { exhausted = true },
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
	assert.True(t, exhausted)
}

func TestDoReturnsLastErrorAfterAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		return errors.New("still failing")
	}, Policy{
		Name:      "test_exhaust",
		Attempts:  3,
		Backoff:   fixedBackoff(time.Millisecond),
		OnAttempt: func(int, error) { attempts++ },
	})

	require.EqualError(t, err, "still failing")
	assert.Equal(t, 3, attempts)
}

func TestDoHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	}, Policy{Name: "test_cancel", Attempts: 5, Backoff: fixedBackoff(time.Hour)})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestExpoJitterCapsAtMax(t *testing.T) {
	b := ExpoJitter{Base: 100 * time.Millisecond, Max: time.Second}
	assert.Equal(t, 100*time.Millisecond, b.Next(0))
	assert.Equal(t, 400*time.Millisecond, b.Next(2))
	assert.Equal(t, time.Second, b.Next(10))
}

func TestSinkPolicyRetriesWhileContextAlive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := SinkPolicy(ctx, "sink_test", 3, nil)

	assert.True(t, p.Retryable(errors.New("broker down")))
	assert.True(t, p.Retryable(context.DeadlineExceeded), "per-attempt timeouts are retried")
	assert.False(t, p.Retryable(nil))

	cancel()
	assert.False(t, p.Retryable(errors.New("broker down")))
	assert.False(t, p.Retryable(context.Canceled))
}
