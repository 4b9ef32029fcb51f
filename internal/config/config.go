package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr        string // API bind address, e.g. "127.0.0.1:8080" or ":8080" in Docker
	LogDir      string
	LogLevel    string
	DatabaseURL string // empty means in-memory stores
	RedisAddr   string // empty disables the result cache
	CacheTTL    time.Duration

	ProbeTimeout time.Duration
	MaxBatch     int // at most 50
	Workers      int // at most 5

	RetryAttempts int
	RetryInitial  time.Duration
	RetryMax      time.Duration

	PublicAPIKeys  []string
	AdminAPIKeys   []string
	PublicRPM      int
	PublicBurst    int
	AllowedOrigins []string

	CheckInterval   time.Duration // 0 disables the rechecker
	CheckTimeout    time.Duration // per rechecker pass
	AlertCooldown   time.Duration
	AlertOnRecovery bool
	SlackWebhook    string
}

// FromEnv reads configuration from the environment. Values that are missing
// or fail to parse fall back to defaults.
func FromEnv() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("API_ADDR", "127.0.0.1:8080")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("PROBE_TIMEOUT_MS", 5000)
	v.SetDefault("MAX_BATCH", 50)
	v.SetDefault("WORKERS", 5)
	v.SetDefault("RETRY_ATTEMPTS", 3)
	v.SetDefault("RETRY_INITIAL_MS", 1000)
	v.SetDefault("RETRY_MAX_MS", 10000)
	v.SetDefault("PUBLIC_RPM", 120)
	v.SetDefault("PUBLIC_BURST", 60)
	v.SetDefault("CHECK_INTERVAL_MS", 0)
	v.SetDefault("CHECK_TIMEOUT_MS", 60000)
	v.SetDefault("ALERT_COOLDOWN_MS", 15*60*1000)
	v.SetDefault("ALERT_ON_RECOVERY", true)

	return Config{
		Addr:        v.GetString("API_ADDR"),
		LogDir:      v.GetString("LOG_DIR"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		CacheTTL:    positiveDur(v, "CACHE_TTL_SECONDS", 300, time.Second),

		ProbeTimeout: positiveDur(v, "PROBE_TIMEOUT_MS", 5000, time.Millisecond),
		MaxBatch:     min(positiveInt(v, "MAX_BATCH", 50), 50),
		Workers:      min(positiveInt(v, "WORKERS", 5), 5),

		RetryAttempts: positiveInt(v, "RETRY_ATTEMPTS", 3),
		RetryInitial:  positiveDur(v, "RETRY_INITIAL_MS", 1000, time.Millisecond),
		RetryMax:      positiveDur(v, "RETRY_MAX_MS", 10000, time.Millisecond),

		PublicAPIKeys:  splitList(v.GetString("PUBLIC_API_KEYS")),
		AdminAPIKeys:   splitList(v.GetString("ADMIN_API_KEYS")),
		PublicRPM:      v.GetInt("PUBLIC_RPM"),
		PublicBurst:    positiveInt(v, "PUBLIC_BURST", 60),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),

		CheckInterval:   time.Duration(max(0, v.GetInt("CHECK_INTERVAL_MS"))) * time.Millisecond,
		CheckTimeout:    positiveDur(v, "CHECK_TIMEOUT_MS", 60000, time.Millisecond),
		AlertCooldown:   time.Duration(max(0, v.GetInt("ALERT_COOLDOWN_MS"))) * time.Millisecond,
		AlertOnRecovery: v.GetBool("ALERT_ON_RECOVERY"),
		SlackWebhook:    v.GetString("SLACK_WEBHOOK_URL"),
	}
}

func positiveInt(v *viper.Viper, key string, def int) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return def
}

func positiveDur(v *viper.Viper, key string, def int, unit time.Duration) time.Duration {
	return time.Duration(positiveInt(v, key, def)) * unit
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
