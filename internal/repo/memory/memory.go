package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/linkchecker/internal/domain"
	"github.com/hamed0406/linkchecker/internal/repo"
)

// Store keeps targets, results and alert state in process memory.
type Store struct {
	mu      sync.RWMutex
	targets []*domain.Target
	byURL   map[string]*domain.Target
	results []*domain.CheckResult
	alerts  map[string]repo.AlertRecord
}

func New() *Store {
	return &Store{
		byURL:   make(map[string]*domain.Target),
		results: make([]*domain.CheckResult, 0, 128),
		alerts:  make(map[string]repo.AlertRecord),
	}
}

// ---- TargetStore ----

func (m *Store) Add(ctx context.Context, t *domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byURL[t.URL]; ok {
		return repo.ErrDuplicate
	}
	if t.ID == "" {
		t.ID = domain.TargetID(uuid.NewString())
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.targets = append(m.targets, t)
	m.byURL[t.URL] = t
	return nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Target, len(m.targets))
	copy(out, m.targets)
	return out, nil
}

func (m *Store) GetByURL(ctx context.Context, url string) (*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byURL[url], nil
}

// ---- ResultStore ----

func (m *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	m.results = append(m.results, r)
	return nil
}

func (m *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[domain.TargetID]*domain.CheckResult)
	for _, r := range m.results {
		cur := latest[r.TargetID]
		if cur == nil || !r.CheckedAt.Before(cur.CheckedAt) {
			latest[r.TargetID] = r
		}
	}

	// target order keeps the output stable
	out := make([]repo.LatestRow, 0, len(latest))
	for _, t := range m.targets {
		r := latest[t.ID]
		if r == nil {
			continue
		}
		var sc *int
		if r.StatusCode != 0 {
			v := r.StatusCode
			sc = &v
		}
		out = append(out, repo.LatestRow{
			TargetID:   string(t.ID),
			URL:        t.URL,
			Valid:      r.Valid,
			StatusCode: sc,
			Reason:     r.Reason,
			CheckedAt:  r.CheckedAt,
		})
	}
	return out, nil
}

// ---- AlertStore ----

func (m *Store) Get(ctx context.Context, targetID string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[targetID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) Set(ctx context.Context, targetID string, lastValid bool, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.alerts[targetID] = repo.AlertRecord{TargetID: targetID, LastValid: lastValid, LastSentAt: ts}
	return nil
}
