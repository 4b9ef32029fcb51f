package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOutcome("valid")
	m.ObserveOutcome("valid")
	m.ObserveOutcome("timeout")
	m.ObserveBatch(3)
	m.OnRetry(1, nil, time.Millisecond)
	m.ObserveProbe("HEAD", 0.2)

	if got := testutil.ToFloat64(m.Validations.WithLabelValues("valid")); got != 2 {
		t.Fatalf("valid=%v want 2", got)
	}
	if got := testutil.ToFloat64(m.Validations.WithLabelValues("timeout")); got != 1 {
		t.Fatalf("timeout=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.Batches); got != 1 {
		t.Fatalf("batches=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.Retries); got != 1 {
		t.Fatalf("retries=%v want 1", got)
	}
}
