// Package extract pulls outbound links from an HTML page so they can be
// validated as a batch.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hamed0406/linkchecker/internal/linkcheck"
	"github.com/hamed0406/linkchecker/internal/retry"
)

const (
	maxPageBytes = 5 << 20

	// DefaultTimeout bounds a whole page fetch, retries and body read included.
	DefaultTimeout = 15 * time.Second
)

type Extractor struct {
	Client  retry.Doer
	Retry   retry.Options
	Guard   func(raw string) error
	Timeout time.Duration
}

func New(client retry.Doer, opts retry.Options) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{Client: client, Retry: opts, Guard: linkcheck.CheckURL, Timeout: DefaultTimeout}
}

// Links fetches pageURL and returns the absolute http(s) links found in
// its anchors, de-duplicated in document order.
func (e *Extractor) Links(ctx context.Context, pageURL string) ([]string, error) {
	if err := e.Guard(pageURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", linkcheck.DefaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := retry.FetchWithRetry(ctx, e.Client, req, e.Retry)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	return ParseLinks(base, io.LimitReader(resp.Body, maxPageBytes))
}

// ParseLinks resolves every a[href] in r against base.
func ParseLinks(base *url.URL, r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = b
		}
	}

	seen := make(map[string]bool)
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		u, err := base.Parse(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		u.Fragment = ""
		abs := u.String()
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	})
	return out, nil
}
