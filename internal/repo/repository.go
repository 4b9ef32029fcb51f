package repo

import (
	"context"
	"errors"
	"time"

	"github.com/hamed0406/linkchecker/internal/domain"
)

// ErrDuplicate is returned by TargetStore.Add when the URL is already watched.
var ErrDuplicate = errors.New("repo: target already exists")

// Ports implemented by the memory and postgres adapters.
type TargetStore interface {
	Add(ctx context.Context, t *domain.Target) error
	List(ctx context.Context) ([]*domain.Target, error)
	// GetByURL returns nil, nil when the URL is not watched.
	GetByURL(ctx context.Context, url string) (*domain.Target, error)
}

type ResultStore interface {
	Append(ctx context.Context, r *domain.CheckResult) error
	// Latest returns the newest result per target.
	Latest(ctx context.Context) ([]LatestRow, error)
}

// LatestRow joins a target with its newest result.
type LatestRow struct {
	TargetID   string    `json:"target_id"`
	URL        string    `json:"url"`
	Valid      bool      `json:"valid"`
	StatusCode *int      `json:"status_code"` // nil when no response was obtained
	Reason     string    `json:"reason"`
	CheckedAt  time.Time `json:"checked_at"`
}
