package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/renovalabs/voice-frontdesk/internal/api"
	"github.com/renovalabs/voice-frontdesk/internal/booking"
	"github.com/renovalabs/voice-frontdesk/internal/calendar"
	"github.com/renovalabs/voice-frontdesk/internal/callrecord"
	"github.com/renovalabs/voice-frontdesk/internal/config"
	"github.com/renovalabs/voice-frontdesk/internal/directory"
	"github.com/renovalabs/voice-frontdesk/internal/frontdesk"
	"github.com/renovalabs/voice-frontdesk/internal/notify"
	"github.com/renovalabs/voice-frontdesk/internal/observability/metrics"
	"github.com/renovalabs/voice-frontdesk/internal/schedule"
	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting voice-frontdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	policy, err := schedule.NewPolicy(cfg.Timezone, cfg.WorkdayStart, cfg.WorkdayEnd,
		cfg.NonWorkingDays, cfg.SlotDuration, cfg.SlotGranularity)
	if err != nil {
		logger.Error("invalid scheduling policy", "error", err)
		os.Exit(1)
	}

	// Durable store is optional; without it the engine runs cache-only.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	} else {
		logger.Warn("DATABASE_URL not set, running without durable storage")
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	defer func() { _ = rdb.Close() }()

	var cal calendar.Service
	if cfg.CalendarBaseURL != "" {
		cal = calendar.NewClient(cfg.CalendarBaseURL, cfg.CalendarAPIKey, cfg.CalendarTimeout, logger)
	} else {
		logger.Warn("CALENDAR_BASE_URL not set, using in-memory calendar")
		cal = calendar.NewMemoryService()
	}

	sender := buildEmailSender(ctx, cfg, logger)
	renderer := notify.NewRenderer(cfg.HospitalName, cfg.HospitalContact)

	var patientStore directory.Store
	var archive api.CallArchive
	var recordStore callrecord.Store
	if pool != nil {
		patientStore = directory.NewPostgresStore(pool)
		pgArchive := callrecord.NewPostgresStore(pool)
		archive = pgArchive
		recordStore = pgArchive
	}

	dir := directory.New(directory.NewSessionStore(rdb, cfg.SessionTTL), patientStore, logger)
	recorder := callrecord.NewRecorder(callrecord.NewActiveStore(rdb, cfg.SessionTTL), recordStore, logger)

	alloc := schedule.NewAllocator(cal, policy, logger)
	checker := schedule.NewChecker(cal, alloc, policy, cfg.AlternativeWindow, cfg.AlternativeCount, logger)

	m := metrics.NewFrontDeskMetrics(nil)
	coord := booking.NewCoordinator(checker, cal, sender, renderer, dir, recorder, logger)
	verifier := booking.NewVerifier(cal, sender, renderer, recorder, cfg.CancelTolerance, logger)

	svc := frontdesk.NewService(checker, coord, verifier, dir, recorder, policy, m, cfg.HospitalName, logger)

	deps := map[string]api.Pinger{
		"redis": api.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	}
	if pool != nil {
		deps["postgres"] = api.PingerFunc(pool.Ping)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Handler:        api.NewHandler(svc, archive, deps, logger),
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildEmailSender(ctx context.Context, cfg *config.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, falling back to stub sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warn("failed to load AWS config, falling back to stub sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
