package retry

import (
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 10 * time.Second
)

// DefaultRetryableStatuses are the HTTP statuses that trigger another attempt.
var DefaultRetryableStatuses = []int{503, 504, 429}

// Options configures one retry sequence. Zero fields take the defaults.
type Options struct {
	// MaxRetries is the total number of attempts, not additional retries.
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	RetryableStatuses []int

	// OnRetry runs synchronously before each retry sleep. attempt is 1-based.
	// A panic inside it is recovered and logged.
	OnRetry func(attempt int, err error, delay time.Duration)

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 1 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if len(o.RetryableStatuses) == 0 {
		o.RetryableStatuses = DefaultRetryableStatuses
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
