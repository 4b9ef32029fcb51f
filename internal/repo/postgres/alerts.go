package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/linkchecker/internal/repo"
)

func (s *Store) Get(ctx context.Context, targetID string) (*repo.AlertRecord, error) {
	const q = `SELECT last_valid, last_sent_at FROM alerts WHERE target_id=$1`
	r := repo.AlertRecord{TargetID: targetID}
	err := s.pool.QueryRow(ctx, q, targetID).Scan(&r.LastValid, &r.LastSentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return &r, nil
}

func (s *Store) Set(ctx context.Context, targetID string, lastValid bool, sentAt time.Time) error {
	const q = `
		INSERT INTO alerts (target_id, last_valid, last_sent_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (target_id)
		DO UPDATE SET last_valid=EXCLUDED.last_valid, last_sent_at=EXCLUDED.last_sent_at
	`
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	if _, err := s.pool.Exec(ctx, q, targetID, lastValid, ts); err != nil {
		return fmt.Errorf("set alert: %w", err)
	}
	return nil
}
