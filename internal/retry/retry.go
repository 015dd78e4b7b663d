package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidRetries is returned when a policy allows a negative number of retries
var ErrInvalidRetries = errors.New("retries must not be negative")

// Policy describes exponential backoff: delay = BaseDelay * Multiplier^attempt
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Multiplier float64

	// Retryable decides whether an error deserves another attempt. nil retries everything.
	Retryable func(error) bool

	// Sleep waits for d or until ctx is done. nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the wait before retry number attempt (0-based)
func (p Policy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(attempt)))
}

// Do runs fn until it succeeds, the policy is exhausted or a non-retryable error
// is returned. The error of the last attempt is returned unchanged.
func Do[T any](ctx context.Context, p Policy, logger *zap.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxRetries < 0 {
		return zero, ErrInvalidRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = timerSleep
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Debug("Operation succeeded after retry", zap.String("op", op), zap.Int("attempt", attempt+1))
			}
			return result, nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			logger.Warn("Operation failed with non-retryable error", zap.String("op", op), zap.Error(err))
			return zero, err
		}

		if attempt == p.MaxRetries {
			logger.Error("All retries exhausted", zap.String("op", op), zap.Int("attempts", attempt+1), zap.Error(err))
			break
		}

		delay := p.Delay(attempt)
		logger.Warn("Attempt failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
