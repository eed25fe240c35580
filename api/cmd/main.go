package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/asfmarkets/intake-bot/internal/application/intake"
	"github.com/asfmarkets/intake-bot/internal/audit"
	"github.com/asfmarkets/intake-bot/internal/config"
	"github.com/asfmarkets/intake-bot/internal/domain"
	"github.com/asfmarkets/intake-bot/internal/infrastructure/memory"
	"github.com/asfmarkets/intake-bot/internal/infrastructure/postgres"
	"github.com/asfmarkets/intake-bot/internal/infrastructure/provisioner"
	"github.com/asfmarkets/intake-bot/internal/infrastructure/rabbitmq"
	"github.com/asfmarkets/intake-bot/internal/infrastructure/redis"
	"github.com/asfmarkets/intake-bot/internal/infrastructure/telegram"
	"github.com/asfmarkets/intake-bot/internal/logger"
	"github.com/asfmarkets/intake-bot/internal/metrics"
	"github.com/asfmarkets/intake-bot/internal/transport/bot"
	http_handlers "github.com/asfmarkets/intake-bot/internal/transport/http/handlers"
	"github.com/asfmarkets/intake-bot/internal/transport/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "intake-bot").
		Str("env", cfg.AppEnv).
		Logger()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ledger ----
	db, err := config.NewDB(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer db.Close()
	log.Info().Msg("postgres connected")

	ledger := postgres.NewLedger(db)

	// ---- Sessions: redis when configured, in-memory otherwise ----
	var sessions domain.SessionStore
	var sessionPinger http_handlers.Pinger
	if cfg.RedisAddr != "" {
		store := redis.NewSessionStore(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.SessionTTL)
		defer store.Close()

		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Msg("redis connected")
		}
		cancel()

		sessions = store
		sessionPinger = store
	} else {
		log.Info().Msg("no REDIS_ADDR, using in-memory sessions")
		sessions = memory.NewSessionStore()
	}

	// ---- Lifecycle event publisher (optional) ----
	var publisher intake.EventPublisher = intake.NoopPublisher{}
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq connect failed, events disabled")
		} else {
			defer pub.Close()
			log.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbitmq connected")
			publisher = pub
		}
	}

	// ---- Outbound clients ----
	prov := provisioner.New(cfg.AutomationURL, cfg.AutomationSecret, cfg.ConnectTimeout, cfg.DemoTimeout, cfg.MT4Timeout)
	tg := telegram.New(cfg.TelegramAPIURL, cfg.TelegramToken, cfg.PollTimeout)

	// ---- Observability ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	auditLog := audit.New(log)

	// ---- Application service ----
	svc := intake.New(ledger, sessions, prov, tg, publisher, auditLog, m, log, intake.Options{
		DefaultCountryCode: cfg.DefaultCountryCode,
		Country:            cfg.Country,
		OwnerID:            cfg.OwnerID,
		BroadcastDelay:     cfg.BroadcastDelay,
	})

	dispatcher := bot.NewDispatcher(tg, svc, log)

	// ---- Ops HTTP surface ----
	opsHandler, err := router.New(router.Deps{
		Health:  http_handlers.NewHealthHandler(db, sessionPinger),
		Metrics: reg,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router build failed")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.OpsPort),
		Handler:           opsHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		log.Info().Int("port", cfg.OpsPort).Msg("ops server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Msg("bot dispatcher starting")
		return dispatcher.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("service exited with error")
	}
	log.Info().Msg("shutdown complete")
}
