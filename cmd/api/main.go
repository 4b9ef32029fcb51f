package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/cache"
	"github.com/hamed0406/linkchecker/internal/config"
	"github.com/hamed0406/linkchecker/internal/extract"
	"github.com/hamed0406/linkchecker/internal/httpapi"
	apimw "github.com/hamed0406/linkchecker/internal/httpapi/middleware"
	"github.com/hamed0406/linkchecker/internal/linkcheck"
	"github.com/hamed0406/linkchecker/internal/logging"
	"github.com/hamed0406/linkchecker/internal/metrics"
	"github.com/hamed0406/linkchecker/internal/notify"
	"github.com/hamed0406/linkchecker/internal/repo"
	"github.com/hamed0406/linkchecker/internal/repo/memory"
	"github.com/hamed0406/linkchecker/internal/repo/postgres"
	"github.com/hamed0406/linkchecker/internal/retry"
	"github.com/hamed0406/linkchecker/internal/scheduler"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	retryOpts := retry.Options{
		MaxRetries:   cfg.RetryAttempts,
		InitialDelay: cfg.RetryInitial,
		MaxDelay:     cfg.RetryMax,
		OnRetry:      m.OnRetry,
		Logger:       logger,
	}

	v := linkcheck.New(logger)
	v.Timeout = cfg.ProbeTimeout
	v.MaxBatch = cfg.MaxBatch
	v.Workers = cfg.Workers
	v.Metrics = m

	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("redis_unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rc.Close()
		} else {
			v.Cache = rc
			defer rc.Close()
			logger.Info("redis_cache_enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	var (
		targets repo.TargetStore
		results repo.ResultStore
		alerts  repo.AlertStore
	)
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("postgres_connect", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Migrate(); err != nil {
			logger.Fatal("postgres_migrate", zap.Error(err))
		}
		targets, results, alerts = pg, pg, pg
		logger.Info("store_postgres")
	} else {
		mem := memory.New()
		targets, results, alerts = mem, mem, mem
		logger.Info("store_memory")
	}

	var notifier notify.Notifier = notify.Nop{}
	if s := notify.NewSlack(cfg.SlackWebhook, retryOpts); s != nil {
		notifier = notify.Multi{s}
	}

	rc := scheduler.NewRechecker(logger, targets, results, v, cfg.CheckInterval, cfg.CheckTimeout)
	rc.ChunkSize = cfg.MaxBatch
	go rc.Run(ctx)

	if cfg.CheckInterval > 0 {
		al := scheduler.NewAlerter(logger, results, alerts, notifier, scheduler.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
			PollInterval:    cfg.CheckInterval,
		})
		go func() {
			if err := al.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("alerter_stopped", zap.Error(err))
			}
		}()
	}

	api := httpapi.NewServer(logger, targets, results, v, extract.New(v.Client, retryOpts))
	api.MaxBatch = cfg.MaxBatch
	api.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})

	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen", zap.Error(err))
	}
	logger.Info("api_stopped")
}
