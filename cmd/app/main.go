// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"course-affiliate-engine/internal/config"
	"course-affiliate-engine/internal/domain/ports/adapter"
	"course-affiliate-engine/internal/infra/adapters/directory"
	"course-affiliate-engine/internal/infra/adapters/notify"
	pg "course-affiliate-engine/internal/infra/db/postgres"
	"course-affiliate-engine/internal/infra/logging"
	"course-affiliate-engine/internal/infra/metrics"
	red "course-affiliate-engine/internal/infra/redis"
	"course-affiliate-engine/internal/infra/sched"
	"course-affiliate-engine/internal/infra/web"
	"course-affiliate-engine/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed validation, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	typeRepo := pg.NewCouponTypeRepoCacheDecorator(pg.NewCouponTypeRepo(pool), redisClient, cfg.Redis.TTL)
	couponRepo := pg.NewCouponRepo(pool)
	assignmentRepo := pg.NewAssignmentRepo(pool)
	commissionRepo := pg.NewCommissionRepo(pool)
	payoutRepo := pg.NewPayoutRepo(pool)

	// ---- Marketplace adapters ----
	dir := directory.NewPostgresDirectory(pool)

	var notifier adapter.AgentNotifier
	if cfg.Notifier.TelegramToken != "" {
		notifier, err = notify.NewTelegramNotifier(cfg.Notifier.TelegramToken, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
	} else {
		logger.Info().Msg("no telegram token configured; payout notifications disabled")
		notifier = notify.NewNoopNotifier()
	}

	taxRate, err := decimal.NewFromString(cfg.Tax.RatePercent)
	if err != nil {
		logger.Fatal().Err(err).Str("rate", cfg.Tax.RatePercent).Msg("tax rate")
	}

	// ---- Use cases ----
	typeUC := usecase.NewCouponTypeUseCase(typeRepo, logger)
	couponUC := usecase.NewCouponUseCase(couponRepo, typeRepo, dir, tm, logger)
	checkoutUC := usecase.NewCheckoutUseCase(couponRepo, typeRepo, assignmentRepo, dir, dir, taxRate, logger)
	commissionUC := usecase.NewCommissionUseCase(commissionRepo, couponRepo, dir, tm, logger)
	payoutUC := usecase.NewPayoutUseCase(payoutRepo, commissionRepo, dir, notifier, tm, logger)
	statsUC := usecase.NewStatsUseCase(commissionRepo, payoutRepo, couponRepo, dir, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.HTTP.JWTSecret, !cfg.Runtime.Dev, "", 30*time.Minute)
	srv := web.NewServer(typeUC, couponUC, checkoutUC, payoutUC, statsUC, auth, cfg.HTTP.AdminAPIKey, rateLimiter, logger)

	router := chi.NewRouter()
	srv.RegisterRoutes(router)
	web.NewWebhookHandler(commissionUC, cfg.Webhook.Secret, logger).Register(router, cfg.Webhook.Path)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTP.Port), Handler: router}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Expiry sweeper ----
	worker := sched.NewExpiryWorker(cfg.Sweeper.Interval, couponUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
