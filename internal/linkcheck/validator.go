package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/retry"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultMaxBatch  = 50
	DefaultWorkers   = 5
	DefaultUserAgent = "LinkChecker/1.0 (+link validation)"

	ReasonUnreachable = "Link inacessível"
)

// Validator checks URLs for reachability. The exported fields may be
// adjusted after New and before first use.
type Validator struct {
	Client    retry.Doer
	Guard     func(raw string) error
	Timeout   time.Duration // per probe
	UserAgent string
	MaxBatch  int
	Workers   int
	Cache     Cache
	Metrics   Recorder
	Logger    *zap.Logger

	now func() time.Time
}

func New(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Validator{
		Guard:     CheckURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBatch:  DefaultMaxBatch,
		Workers:   DefaultWorkers,
		Metrics:   nopRecorder{},
		Logger:    logger,
		now:       time.Now,
	}
	// no client timeout: each probe carries its own deadline
	v.Client = &http.Client{CheckRedirect: v.checkRedirect}
	return v
}

// redirects are followed, but every hop goes through the guard again
func (v *Validator) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	return v.Guard(req.URL.String())
}

// ValidateOne runs the guard, a HEAD probe and, when HEAD fails with
// anything other than 404 or 405, a GET probe whose outcome replaces it.
// It never returns an error; every failure is captured in the Result.
func (v *Validator) ValidateOne(ctx context.Context, raw string) Result {
	if err := v.Guard(raw); err != nil {
		return v.finish(raw, 0, err.Error(), OutcomeRejected)
	}

	if v.Cache != nil {
		if r, ok, err := v.Cache.Get(ctx, raw); err != nil {
			v.Logger.Warn("link_cache_get_error", zap.String("url", raw), zap.Error(err))
		} else if ok {
			v.Metrics.ObserveOutcome(OutcomeCached)
			r.URL = raw
			r.ValidatedAt = v.now().UnixMilli()
			return r
		}
	}

	status, err := v.probe(ctx, http.MethodHead, raw)
	if err == nil && !success(status) && status != http.StatusNotFound && status != http.StatusMethodNotAllowed {
		status, err = v.probe(ctx, http.MethodGet, raw)
	}

	var r Result
	switch {
	case err != nil && retry.IsTimeout(err):
		r = v.finish(raw, 0, TimeoutReason(v.Timeout), OutcomeTimeout)
	case err != nil:
		v.Logger.Debug("link_unreachable", zap.String("url", raw), zap.Error(err))
		r = v.finish(raw, 0, ReasonUnreachable, OutcomeUnreachable)
	case success(status) || status == http.StatusMethodNotAllowed:
		r = v.finish(raw, status, "", OutcomeValid)
	default:
		r = v.finish(raw, status, fmt.Sprintf("HTTP %d", status), OutcomeHTTPError)
	}

	if r.IsValid && v.Cache != nil {
		if err := v.Cache.Set(ctx, r); err != nil {
			v.Logger.Warn("link_cache_set_error", zap.String("url", raw), zap.Error(err))
		}
	}
	return r
}

// TimeoutReason is the error text for a probe that hit its deadline.
func TimeoutReason(d time.Duration) string {
	return fmt.Sprintf("Timeout (%s)", d)
}

func (v *Validator) probe(ctx context.Context, method, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, v.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", v.UserAgent)
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := v.Client.Do(req)
	v.Metrics.ObserveProbe(method, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, context.DeadlineExceeded
		}
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	return resp.StatusCode, nil
}

func (v *Validator) finish(raw string, status int, reason, outcome string) Result {
	r := Result{
		URL:         raw,
		IsValid:     reason == "",
		Error:       reason,
		StatusCode:  status,
		ValidatedAt: v.now().UnixMilli(),
	}
	v.Metrics.ObserveOutcome(outcome)
	v.Logger.Debug("link_validated",
		zap.String("url", raw),
		zap.Bool("valid", r.IsValid),
		zap.Int("status", status),
		zap.String("outcome", outcome),
	)
	return r
}

func success(status int) bool {
	return status >= 200 && status < 400
}
