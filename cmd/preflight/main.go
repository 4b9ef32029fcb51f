// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hamed0406/linkchecker/internal/config"
)

func main() {
	_ = godotenv.Load()

	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()

	if len(cfg.AdminAPIKeys) == 0 {
		fail("ADMIN_API_KEYS is empty (anyone can edit the watch list).")
	}
	if len(cfg.PublicAPIKeys) == 0 {
		fail("PUBLIC_API_KEYS is empty (validation routes are open).")
	}

	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS"} {
		if strings.Contains(os.Getenv(name), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	ok("API_ADDR=" + cfg.Addr)
	ok(fmt.Sprintf("probe timeout %s, batch %d, workers %d", cfg.ProbeTimeout, cfg.MaxBatch, cfg.Workers))

	if n, _ := strconv.Atoi(os.Getenv("MAX_BATCH")); n > 50 {
		warn("MAX_BATCH above 50 is clamped to 50.")
	}
	if n, _ := strconv.Atoi(os.Getenv("WORKERS")); n > 5 {
		warn("WORKERS above 5 is clamped to 5.")
	}

	if cfg.DatabaseURL == "" {
		warn("DATABASE_URL empty: watch list and results live in memory.")
	} else {
		ok("DATABASE_URL present")
	}

	if cfg.RedisAddr == "" {
		warn("REDIS_ADDR empty: result cache disabled.")
	} else {
		ok("REDIS_ADDR=" + cfg.RedisAddr)
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty: CORS allows any origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if cfg.CheckInterval == 0 {
		warn("CHECK_INTERVAL_MS is 0: watch list is only checked when targets are added.")
	} else {
		ok("CHECK_INTERVAL_MS=" + cfg.CheckInterval.String())
	}

	if cfg.SlackWebhook != "" {
		if u, err := url.Parse(cfg.SlackWebhook); err != nil || u.Scheme != "https" {
			fail("SLACK_WEBHOOK_URL must be an https URL.")
		}
		ok("Slack alerts enabled")
	}

	ok("preflight passed")
}
