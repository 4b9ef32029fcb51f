package linkcheck

import "context"

// Cache stores recent valid results so repeated checks skip the network.
type Cache interface {
	Get(ctx context.Context, url string) (Result, bool, error)
	Set(ctx context.Context, r Result) error
}

// Recorder receives validation telemetry. The metrics package implements it.
type Recorder interface {
	ObserveProbe(method string, seconds float64)
	ObserveOutcome(outcome string)
	ObserveBatch(size int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveProbe(string, float64) {}
func (nopRecorder) ObserveOutcome(string)        {}
func (nopRecorder) ObserveBatch(int)             {}
