package linkcheck

import "time"

// Result is the outcome of validating one URL. Error is set iff IsValid is
// false; StatusCode is 0 when no response was obtained.
type Result struct {
	URL         string `json:"url"`
	IsValid     bool   `json:"isValid"`
	Error       string `json:"error,omitempty"`
	StatusCode  int    `json:"statusCode,omitempty"`
	ValidatedAt int64  `json:"validatedAt"` // unix millis
}

// CheckedAt returns ValidatedAt as a time.Time in UTC.
func (r Result) CheckedAt() time.Time {
	return time.UnixMilli(r.ValidatedAt).UTC()
}

// Outcome labels used for logs and metrics.
const (
	OutcomeValid       = "valid"
	OutcomeHTTPError   = "http_error"
	OutcomeTimeout     = "timeout"
	OutcomeUnreachable = "unreachable"
	OutcomeRejected    = "rejected"
	OutcomeCached      = "cached"
)
