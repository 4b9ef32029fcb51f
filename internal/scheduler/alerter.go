package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/notify"
	"github.com/hamed0406/linkchecker/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

// Alerter notifies when a watched link turns broken or recovers.
type Alerter struct {
	logger   *zap.Logger
	results  repo.ResultStore
	alertDB  repo.AlertStore
	notifier notify.Notifier
	cfg      AlerterConfig
	now      func() time.Time
}

func NewAlerter(
	logger *zap.Logger,
	results repo.ResultStore,
	alertDB repo.AlertStore,
	notifier notify.Notifier,
	cfg AlerterConfig,
) *Alerter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Alerter{
		logger:   logger,
		results:  results,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	a.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			a.scan(ctx)
		}
	}
}

func (a *Alerter) scan(ctx context.Context) {
	if err := a.scanOnce(ctx); err != nil {
		a.logger.Warn("alerter_scan_error", zap.Error(err))
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	rows, err := a.results.Latest(ctx)
	if err != nil {
		return err
	}
	now := a.now()

	for _, r := range rows {
		rec, err := a.alertDB.Get(ctx, r.TargetID)
		if err != nil {
			return fmt.Errorf("alert state %s: %w", r.TargetID, err)
		}

		// first sighting counts as a change only when the link is broken
		changed := (rec == nil && !r.Valid) || (rec != nil && rec.LastValid != r.Valid)

		// cooldown only suppresses repeated "broken" alerts
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		brokenAlert := changed && !r.Valid && cooled
		recoveryAlert := changed && r.Valid && a.cfg.AlertOnRecovery

		if brokenAlert || recoveryAlert {
			title := "🔴 Link BROKEN"
			if r.Valid {
				title = "🟢 Link RECOVERED"
			}
			status := "n/a"
			if r.StatusCode != nil {
				status = fmt.Sprintf("%d", *r.StatusCode)
			}
			text := fmt.Sprintf("URL: %s\nHTTP: %s\nReason: %s\nChecked: %s",
				r.URL, status, r.Reason, r.CheckedAt.Format(time.RFC3339))

			if err := a.notifier.Send(ctx, title, text); err != nil {
				a.logger.Warn("alert_send_error", zap.String("url", r.URL), zap.Error(err))
			}
			if err := a.alertDB.Set(ctx, r.TargetID, r.Valid, now); err != nil {
				return err
			}
			continue
		}

		// record the new state even when nothing was sent, keeping the last send time
		if rec == nil || changed {
			var sentAt time.Time
			if rec != nil && rec.LastSentAt != nil {
				sentAt = *rec.LastSentAt
			}
			if err := a.alertDB.Set(ctx, r.TargetID, r.Valid, sentAt); err != nil {
				return err
			}
		}
	}
	return nil
}
