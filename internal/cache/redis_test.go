package cache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/linkchecker/internal/linkcheck"
)

func TestKey_StableAndPrefixed(t *testing.T) {
	a := Key("https://example.com/a")
	if a != Key("https://example.com/a") {
		t.Fatalf("key not stable")
	}
	if a == Key("https://example.com/b") {
		t.Fatalf("distinct URLs share a key")
	}
	if !strings.HasPrefix(a, "linkcheck:") || len(a) != len("linkcheck:")+64 {
		t.Fatalf("unexpected key shape %q", a)
	}
}

func TestRedis_SetGet(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping Redis integration test")
	}
	ctx := context.Background()
	c := NewRedis(addr, time.Minute)
	defer c.Close()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	url := fmt.Sprintf("https://example.com/cache-%d", time.Now().UnixNano())
	if _, ok, err := c.Get(ctx, url); err != nil || ok {
		t.Fatalf("want miss, got ok=%v err=%v", ok, err)
	}
	want := linkcheck.Result{URL: url, IsValid: true, StatusCode: 200, ValidatedAt: 42}
	if err := c.Set(ctx, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, url)
	if err != nil || !ok || got != want {
		t.Fatalf("want %+v, got %+v ok=%v err=%v", want, got, ok, err)
	}
}
