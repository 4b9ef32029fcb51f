package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/repo"
)

// ---- shared helpers ----

func row(id, url string, valid bool, status *int) repo.LatestRow {
	return repo.LatestRow{
		TargetID:   id,
		URL:        url,
		Valid:      valid,
		StatusCode: status,
		CheckedAt:  time.Now(),
	}
}

type memAlerts struct {
	m map[string]repo.AlertRecord
}

func (m *memAlerts) Get(ctx context.Context, targetID string) (*repo.AlertRecord, error) {
	if m.m == nil {
		m.m = map[string]repo.AlertRecord{}
	}
	r, ok := m.m[targetID]
	if !ok {
		return nil, nil
	}
	rr := r
	return &rr, nil
}

func (m *memAlerts) Set(ctx context.Context, targetID string, lastValid bool, sentAt time.Time) error {
	if m.m == nil {
		m.m = map[string]repo.AlertRecord{}
	}
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.m[targetID] = repo.AlertRecord{TargetID: targetID, LastValid: lastValid, LastSentAt: ts}
	return nil
}

type memNotifier struct {
	n      int
	titles []string
}

func (m *memNotifier) Send(ctx context.Context, title, text string) error {
	m.n++
	m.titles = append(m.titles, title)
	return nil
}

// ---- tests ----

func TestAlerter_SendsOnBroken_RespectsCooldown(t *testing.T) {
	results := &fakeResults{
		rows: []repo.LatestRow{row("A", "https://a", false, intp(404))},
	}
	alerts := &memAlerts{}
	nt := &memNotifier{}
	al := NewAlerter(zap.NewNop(), results, alerts, nt, AlerterConfig{
		AlertOnRecovery: true,
		Cooldown:        time.Minute,
		PollInterval:    10 * time.Millisecond,
	})

	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nt.n != 1 {
		t.Fatalf("want 1 alert, got %d", nt.n)
	}

	// still broken within cooldown
	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nt.n != 1 {
		t.Fatalf("want cooldown to suppress, got %d", nt.n)
	}

	results.rows = []repo.LatestRow{row("A", "https://a", true, intp(200))}
	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nt.n != 2 {
		t.Fatalf("want recovery alert, got %d", nt.n)
	}
	if nt.titles[1] != "🟢 Link RECOVERED" {
		t.Fatalf("recovery title = %q", nt.titles[1])
	}
}

func TestAlerter_NoRecoveryIfDisabled(t *testing.T) {
	results := &fakeResults{rows: []repo.LatestRow{row("B", "https://b", true, intp(200))}}
	alerts := &memAlerts{}
	nt := &memNotifier{}
	al := NewAlerter(zap.NewNop(), results, alerts, nt, AlerterConfig{})

	// first sighting valid: nothing to say
	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nt.n != 0 {
		t.Fatalf("unexpected alert: %d", nt.n)
	}
	if rec := alerts.m["B"]; !rec.LastValid {
		t.Fatalf("state not recorded: %+v", rec)
	}

	results.rows = []repo.LatestRow{row("B", "https://b", false, nil)}
	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nt.n != 1 {
		t.Fatalf("want one broken alert, got %d", nt.n)
	}

	results.rows = []repo.LatestRow{row("B", "https://b", true, intp(200))}
	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nt.n != 1 {
		t.Fatalf("recovery should be silent, got %d", nt.n)
	}
}

func TestAlerter_CooldownElapsed(t *testing.T) {
	results := &fakeResults{rows: []repo.LatestRow{row("C", "https://c", false, intp(500))}}
	alerts := &memAlerts{}
	nt := &memNotifier{}
	al := NewAlerter(zap.NewNop(), results, alerts, nt, AlerterConfig{Cooldown: time.Minute})

	now := time.Now()
	al.now = func() time.Time { return now }
	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	// recover silently, then break again after the cooldown
	results.rows = []repo.LatestRow{row("C", "https://c", true, intp(200))}
	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	results.rows = []repo.LatestRow{row("C", "https://c", false, intp(500))}
	if err := al.scanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nt.n != 2 {
		t.Fatalf("want 2 broken alerts, got %d", nt.n)
	}
}

func intp(i int) *int { return &i }
