package repo

import (
	"context"
	"time"
)

// AlertRecord holds the last validity we saw for a target and the last
// time a notification went out for it (used for cooldown).
type AlertRecord struct {
	TargetID   string
	LastValid  bool
	LastSentAt *time.Time
}

type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, targetID string) (*AlertRecord, error)
	// Set upserts the record. A zero sentAt stores no send time.
	Set(ctx context.Context, targetID string, lastValid bool, sentAt time.Time) error
}
