package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/domain"
	"github.com/hamed0406/linkchecker/internal/repo"
)

var _ repo.TargetStore = (*Store)(nil)
var _ repo.ResultStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ---- TargetStore ----

func (s *Store) Add(ctx context.Context, t *domain.Target) error {
	if t.ID == "" {
		t.ID = domain.TargetID(uuid.NewString())
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO targets (id, url, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (url) DO NOTHING`,
		string(t.ID), t.URL, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert target: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrDuplicate
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Target, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, url, created_at
		   FROM targets
		  ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []*domain.Target
	for rows.Next() {
		var t domain.Target
		if err := rows.Scan(&t.ID, &t.URL, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *Store) GetByURL(ctx context.Context, url string) (*domain.Target, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, url, created_at FROM targets WHERE url = $1`, url)
	if err != nil {
		return nil, fmt.Errorf("get target: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	var t domain.Target
	if err := rows.Scan(&t.ID, &t.URL, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan target: %w", err)
	}
	return &t, nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, cr *domain.CheckResult) error {
	if cr.CheckedAt.IsZero() {
		cr.CheckedAt = time.Now().UTC()
	}
	var statusPtr *int
	if cr.StatusCode != 0 {
		statusPtr = &cr.StatusCode
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO results
		   (target_id, valid, status_code, reason, checked_at)
		 VALUES
		   ($1, $2, $3, $4, $5)`,
		string(cr.TargetID), cr.Valid, statusPtr, cr.Reason, cr.CheckedAt,
	)
	if err != nil {
		s.log.Warn("pg_insert_result_error", zap.String("target_id", string(cr.TargetID)), zap.Error(err))
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (r.target_id)
       r.target_id,
       t.url,
       r.valid,
       r.status_code,
       r.reason,
       r.checked_at
  FROM results r
  JOIN targets t ON t.id = r.target_id
 ORDER BY r.target_id, r.checked_at DESC`)
	if err != nil {
		s.log.Warn("pg_latest_error", zap.Error(err))
		return nil, fmt.Errorf("latest: %w", err)
	}
	defer rows.Close()

	var out []repo.LatestRow
	for rows.Next() {
		var (
			row        repo.LatestRow
			statusNull sql.NullInt32
		)
		if err := rows.Scan(&row.TargetID, &row.URL, &row.Valid, &statusNull, &row.Reason, &row.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan latest: %w", err)
		}
		if statusNull.Valid {
			v := int(statusNull.Int32)
			row.StatusCode = &v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
