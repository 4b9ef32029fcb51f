package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for link validation.
// It satisfies linkcheck.Recorder.
type Metrics struct {
	Validations   *prometheus.CounterVec
	ProbeDuration *prometheus.HistogramVec
	Batches       prometheus.Counter
	BatchSize     prometheus.Histogram
	Retries       prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "linkcheck_validations_total",
			Help: "Link validations by outcome.",
		}, []string{"outcome"}), // valid, http_error, timeout, unreachable, rejected, cached
		ProbeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "linkcheck_probe_duration_seconds",
			Help:    "Duration of outbound probe requests.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method"}),
		Batches: f.NewCounter(prometheus.CounterOpts{
			Name: "linkcheck_batches_total",
			Help: "Batch validations started.",
		}),
		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "linkcheck_batch_size",
			Help:    "URLs per batch.",
			Buckets: []float64{1, 5, 10, 25, 50},
		}),
		Retries: f.NewCounter(prometheus.CounterOpts{
			Name: "linkcheck_retries_total",
			Help: "Retry attempts made by outbound HTTP calls.",
		}),
	}
}

func (m *Metrics) ObserveProbe(method string, seconds float64) {
	m.ProbeDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) ObserveOutcome(outcome string) {
	m.Validations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveBatch(size int) {
	m.Batches.Inc()
	m.BatchSize.Observe(float64(size))
}

// OnRetry matches retry.Options.OnRetry.
func (m *Metrics) OnRetry(int, error, time.Duration) {
	m.Retries.Inc()
}
