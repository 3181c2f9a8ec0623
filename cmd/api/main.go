package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-dispatch/internal/audit"
	"voice-dispatch/internal/auth"
	"voice-dispatch/internal/calls"
	"voice-dispatch/internal/config"
	"voice-dispatch/internal/dispatch"
	"voice-dispatch/internal/httpapi"
	"voice-dispatch/internal/numberpool"
	"voice-dispatch/internal/reporting"
	"voice-dispatch/internal/routing"
	"voice-dispatch/internal/telephony"
	"voice-dispatch/pkg/logger"
	"voice-dispatch/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional env file for local development; real env always wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Core services.
	auditSvc := audit.NewService(audit.NewMemoryRepo())
	pool := numberpool.NewService(numberpool.NewPGStore(db))
	callStore := calls.NewPGStore(db)

	overrides := routing.NewMemoryOverrideStore()
	selector := &routing.Selector{
		GatewayPrefixes:   cfg.Gateway.Prefixes,
		GatewayConfigured: cfg.Gateway.Configured(),
		Overrides: routing.NewOverrideEngine(overrides, routing.AuditAdapter{
			Audit: auditSvc,
		}),
	}

	provider := telephony.NewVapiClient(cfg.VapiBaseURL(), cfg.Vapi.APIKey, cfg.VapiTimeout())

	dispatcher := &dispatch.Dispatcher{
		Routes:            selector,
		Pool:              pool,
		Provider:          provider,
		Calls:             callStore,
		Log:               log,
		DefaultAMDProfile: cfg.DefaultAMDProfile(),
	}
	if cfg.Gateway.Configured() {
		dispatcher.Gateway = telephony.NewGatewayClient(
			cfg.Gateway.BaseURL,
			cfg.Gateway.APIKey,
			cfg.Gateway.APISecret,
			cfg.Gateway.Extension,
			cfg.Gateway.DefaultCallerID,
			0,
		)
	}
	var concurrencyCap *utils.RedisConcurrencyCap
	if cfg.Dispatch.ConcurrencyLimit > 0 {
		concurrencyCap = utils.NewRedisConcurrencyCap(rdb, cfg.Dispatch.ConcurrencyLimit, 10*time.Minute)
		dispatcher.Cap = concurrencyCap
	}

	reports := reporting.NewService(reporting.NewPGRepo(db), pool)

	webhooks := telephony.WebhookHandler{
		Calls: callStore,
		Dedup: utils.NewRedisDeduper(rdb, cfg.WebhookDedupTTL()),
	}
	if concurrencyCap != nil {
		// The webhook frees the in-flight slot the dispatcher acquired.
		webhooks.Cap = concurrencyCap
	}

	handlers := httpapi.Handlers{
		Auth:        authManager,
		Dispatcher:  dispatcher,
		Pool:        pool,
		Reports:     reports,
		Audit:       auditSvc,
		Overrides:   overrides,
		BatchPacing: cfg.BatchPacing(),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, auth.RequireAccessToken(authManager), handlers, webhooks)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
