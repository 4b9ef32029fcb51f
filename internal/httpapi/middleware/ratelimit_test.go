package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsThenBlocks(t *testing.T) {
	h := RateLimit(60, 2)(okHandler())
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("want 200 got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 429 {
		t.Fatalf("want 429 got %d", rr.Code)
	}

	time.Sleep(1100 * time.Millisecond)
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req)
	if rr2.Code != 200 {
		t.Fatalf("want 200 after refill got %d", rr2.Code)
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	h := RateLimit(60, 1)(okHandler())

	a := httptest.NewRequest("GET", "/", nil)
	a.RemoteAddr = "1.2.3.4:1234"
	b := httptest.NewRequest("GET", "/", nil)
	b.RemoteAddr = "5.6.7.8:1234"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, a)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, a)
	if rr.Code != 429 {
		t.Fatalf("second request from a: want 429 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, b)
	if rr.Code != 200 {
		t.Fatalf("b has its own bucket: want 200 got %d", rr.Code)
	}
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	h := RateLimit(0, 0)(okHandler())
	req := httptest.NewRequest("GET", "/", nil)
	for i := 0; i < 100; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("request %d: want 200 got %d", i, rr.Code)
		}
	}
}

func TestClientIP_PrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:999"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Fatalf("clientIP = %q", got)
	}
}
