package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hamed0406/linkchecker/internal/retry"
)

type Slack struct {
	Webhook string
	Client  *http.Client
	Retry   retry.Options
}

// NewSlack returns nil when webhook is empty so callers can skip it.
func NewSlack(webhook string, opts retry.Options) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
		Retry:   opts,
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

// Send posts to the webhook, retrying 429/503/504 with backoff.
func (s *Slack) Send(ctx context.Context, title, text string) error {
	if s == nil || s.Webhook == "" {
		return errors.New("slack disabled")
	}
	body, err := json.Marshal(slackPayload{Text: "*" + title + "*\n" + text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := retry.FetchWithRetry(ctx, s.Client, req, s.Retry)
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	return resp.Body.Close()
}
