package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestDo_Success(t *testing.T) {
	attempts := 0
	got, err := Do(context.Background(), Policy{MaxRetries: 3, BaseDelay: time.Millisecond}, nil, "test",
		func(ctx context.Context) (string, error) {
			attempts++
			return "ok", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestDo_EventualSuccess(t *testing.T) {
	sleeper := &recordingSleeper{}
	attempts := 0
	p := Policy{MaxRetries: 5, BaseDelay: 10 * time.Millisecond, Multiplier: 2, Sleep: sleeper.sleep}

	got, err := Do(context.Background(), p, nil, "test", func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("temporary error")
		}
		return attempts, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, sleeper.delays)
}

func TestDo_AllAttemptsFail(t *testing.T) {
	sleeper := &recordingSleeper{}
	expectedErr := errors.New("persistent error")
	attempts := 0
	p := Policy{MaxRetries: 3, BaseDelay: 100 * time.Millisecond, Multiplier: 2, Sleep: sleeper.sleep}

	_, err := Do(context.Background(), p, nil, "test", func(ctx context.Context) (struct{}, error) {
		attempts++
		return struct{}{}, expectedErr
	})
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 4, attempts, "should attempt MaxRetries+1 times")
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}, sleeper.delays)
}

func TestDo_NonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	attempts := 0
	p := Policy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		Retryable:  func(err error) bool { return !errors.Is(err, fatal) },
	}

	_, err := Do(context.Background(), p, nil, "test", func(ctx context.Context) (int, error) {
		attempts++
		return 0, fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := Do(ctx, Policy{MaxRetries: 10, BaseDelay: 10 * time.Millisecond}, nil, "test",
		func(ctx context.Context) (int, error) {
			attempts++
			if attempts == 2 {
				cancel() // Cancel after second attempt
			}
			return 0, errors.New("error")
		})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestDo_ZeroRetries(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), Policy{}, nil, "test", func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("error")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "zero retries still makes the first attempt")
}

func TestDo_NegativeRetries(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), Policy{MaxRetries: -1}, nil, "test", func(ctx context.Context) (int, error) {
		attempts++
		return 0, nil
	})
	assert.ErrorIs(t, err, ErrInvalidRetries)
	assert.Equal(t, 0, attempts)
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{BaseDelay: time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))

	flat := Policy{BaseDelay: time.Second}
	assert.Equal(t, time.Second, flat.Delay(3), "missing multiplier means constant delay")
}
