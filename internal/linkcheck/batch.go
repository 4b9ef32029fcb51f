package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrBatchTooLarge = errors.New("linkcheck: batch too large")

// ValidateBatch validates urls with a fixed pool of workers that pull
// indices from a shared cursor. MaxBatch and Workers may lower the limits
// of 50 URLs and 5 workers but never raise them. results[i] always belongs to urls[i].
// The only error is ErrBatchTooLarge, returned before any network call;
// cancelling ctx aborts in-flight probes and the remaining URLs come back
// invalid.
func (v *Validator) ValidateBatch(ctx context.Context, urls []string) ([]Result, error) {
	limit := min(v.MaxBatch, DefaultMaxBatch)
	if len(urls) > limit {
		return nil, fmt.Errorf("%w: %d urls (max %d)", ErrBatchTooLarge, len(urls), limit)
	}
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results, nil
	}
	v.Metrics.ObserveBatch(len(urls))
	start := time.Now()

	var (
		cursor atomic.Int64
		g      errgroup.Group
	)
	workers := max(1, min(v.Workers, DefaultWorkers, len(urls)))
	for range workers {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1) - 1)
				if i >= len(urls) {
					return nil
				}
				results[i] = v.ValidateOne(ctx, urls[i])
			}
		})
	}
	_ = g.Wait()

	invalid := 0
	for _, r := range results {
		if !r.IsValid {
			invalid++
		}
	}
	v.Logger.Info("batch_validated",
		zap.Int("urls", len(urls)),
		zap.Int("invalid", invalid),
		zap.Int("workers", workers),
		zap.Duration("took", time.Since(start)),
	)
	return results, nil
}
