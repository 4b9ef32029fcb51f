package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Do runs op up to opts.MaxRetries times. Only transient failures are
// retried; the delay doubles from InitialDelay and is capped at MaxDelay.
// When attempts run out the last error is returned unchanged.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts Options) (T, error) {
	opts = opts.withDefaults()

	// no jitter: the schedule must be initial, 2*initial, ... up to max
	b := &backoff.ExponentialBackOff{
		InitialInterval:     opts.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         opts.MaxDelay,
	}
	b.Reset()

	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt < opts.MaxRetries; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt >= opts.MaxRetries-1 || !Retryable(err, opts.RetryableStatuses) {
			return zero, err
		}

		delay := min(b.NextBackOff(), opts.MaxDelay)
		notify(opts, attempt+1, err, delay)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
	return zero, lastErr
}

func notify(opts Options, attempt int, err error, delay time.Duration) {
	opts.Logger.Debug("retry_attempt",
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
		zap.Error(err),
	)
	if opts.OnRetry == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			opts.Logger.Warn("retry_observer_panic", zap.Any("panic", r))
		}
	}()
	opts.OnRetry(attempt, err, delay)
}
