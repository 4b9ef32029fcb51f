package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/linkchecker/internal/httpapi/middleware"
	"github.com/hamed0406/linkchecker/internal/linkcheck"
	"github.com/hamed0406/linkchecker/internal/metrics"
	"github.com/hamed0406/linkchecker/internal/repo/memory"
)

func TestNormalizeHTTPURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://EXAMPLE.com/", "https://example.com"},
		{"http://example.com:80", "http://example.com"},
		{"https://example.com:443/", "https://example.com"},
		{"https://example.com:8443/x", "https://example.com:8443/x"},
		{"https://example.com/p/", "https://example.com/p/"},
		{"HTTPS://example.com/a#frag", "https://example.com/a"},
		{"  https://example.com  ", "https://example.com"},
		{"not a url", "not a url"},
	}
	for _, c := range cases {
		if got := normalizeHTTPURL(c.in); got != c.want {
			t.Fatalf("normalizeHTTPURL(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveOutcome(linkcheck.OutcomeValid)

	store := memory.New()
	srv := NewServer(zap.NewNop(), store, store, linkcheck.New(zap.NewNop()), &fakeExtractor{})
	srv.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	rec := httptest.NewRecorder()
	srv.Router(apimw.Keys{}, nil, 0, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `linkcheck_validations_total{outcome="valid"} 1`) {
		t.Fatalf("metric missing from body:\n%s", rec.Body.String())
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	store := memory.New()
	srv := NewServer(zap.NewNop(), store, store, linkcheck.New(zap.NewNop()), &fakeExtractor{})
	h := srv.Router(apimw.Keys{}, []string{"https://app.example.com"}, 0, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/links/check", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/links/check", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
