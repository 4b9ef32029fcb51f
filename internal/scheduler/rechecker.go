package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/domain"
	"github.com/hamed0406/linkchecker/internal/linkcheck"
	"github.com/hamed0406/linkchecker/internal/repo"
)

// BatchValidator is satisfied by *linkcheck.Validator.
type BatchValidator interface {
	ValidateBatch(ctx context.Context, urls []string) ([]linkcheck.Result, error)
}

// Rechecker periodically validates every watched target.
type Rechecker struct {
	Logger    *zap.Logger
	Targets   repo.TargetStore
	Results   repo.ResultStore
	Validator BatchValidator
	Interval  time.Duration
	Timeout   time.Duration // bound on a whole pass
	ChunkSize int
}

func NewRechecker(
	logger *zap.Logger,
	ts repo.TargetStore,
	rs repo.ResultStore,
	v BatchValidator,
	interval time.Duration,
	timeout time.Duration,
) *Rechecker {
	if interval < 0 {
		interval = 0
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Rechecker{
		Logger:    logger,
		Targets:   ts,
		Results:   rs,
		Validator: v,
		Interval:  interval,
		Timeout:   timeout,
		ChunkSize: linkcheck.DefaultMaxBatch,
	}
}

// Run does an immediate pass, then one per tick, until ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	ts, err := r.Targets.List(ctx)
	if err != nil {
		r.Logger.Warn("rechecker_list_error", zap.Error(err))
		return
	}
	if len(ts) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	size := min(r.ChunkSize, linkcheck.DefaultMaxBatch)
	if size <= 0 {
		size = linkcheck.DefaultMaxBatch
	}
	for start := 0; start < len(ts); start += size {
		chunk := ts[start:min(start+size, len(ts))]
		urls := make([]string, len(chunk))
		for i, t := range chunk {
			urls[i] = t.URL
		}

		results, err := r.Validator.ValidateBatch(ctx, urls)
		if err != nil {
			r.Logger.Warn("rechecker_batch_error", zap.Int("size", len(urls)), zap.Error(err))
			continue
		}
		for i, res := range results {
			cr := domain.FromValidation(chunk[i].ID, res)
			if err := r.Results.Append(ctx, cr); err != nil {
				r.Logger.Warn("rechecker_append_error",
					zap.String("target_id", string(chunk[i].ID)),
					zap.String("url", chunk[i].URL),
					zap.Error(err),
				)
			}
		}
	}
	r.Logger.Debug("rechecker_pass_done", zap.Int("targets", len(ts)))
}
