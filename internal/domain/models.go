package domain

import (
	"time"

	"github.com/hamed0406/linkchecker/internal/linkcheck"
)

type TargetID string

// Target is a URL on the watch list.
type Target struct {
	ID        TargetID  `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckResult is a stored validation of a watched target.
type CheckResult struct {
	TargetID   TargetID  `json:"target_id"`
	Valid      bool      `json:"valid"`
	StatusCode int       `json:"status_code,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// FromValidation records r against target id.
func FromValidation(id TargetID, r linkcheck.Result) *CheckResult {
	return &CheckResult{
		TargetID:   id,
		Valid:      r.IsValid,
		StatusCode: r.StatusCode,
		Reason:     r.Error,
		CheckedAt:  r.CheckedAt(),
	}
}
