package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finsmart/internal/advisor"
	"finsmart/internal/amqp"
	"finsmart/internal/auth"
	"finsmart/internal/cache"
	"finsmart/internal/cli"
	"finsmart/internal/config"
	apphttp "finsmart/internal/http"
	"finsmart/internal/log"
	"finsmart/internal/notify"
	"finsmart/internal/services"
	"finsmart/internal/session"
	"finsmart/internal/store"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	_, _, medium := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := medium.Close(); err != nil {
			logger.Error("Failed to close storage backend", log.FieldError, err)
		}
	}()

	storeOpts := []store.Option{store.WithLogger(logger)}
	if cfg.AMQPEnabled() {
		publisher, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// the worker's periodic sweep still mirrors the tables
			logger.Warn("AMQP unavailable, table-saved events disabled", log.FieldError, err)
		} else {
			defer publisher.Close()
			storeOpts = append(storeOpts, store.WithObserver(publisher))
			logger.Info("Publishing table-saved events", "exchange", cfg.AMQPExchange)
		}
	}
	tables := store.New(medium.Medium, storeOpts...)

	reconcileCtx, reconcileCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := tables.ReconcileAll(reconcileCtx); err != nil {
		logger.Warn("Some tables could not be reconciled at startup", log.FieldError, err)
	}
	reconcileCancel()

	ai, err := advisor.New(advisor.Config{
		APIKey:      cfg.AIAPIKey,
		BaseURL:     cfg.AIBaseURL,
		Model:       cfg.AIModel,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
		Timeout:     cfg.AITimeout,
	}, advisor.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to initialize AI advisor", log.FieldError, err)
		os.Exit(1)
	}

	var notifier services.OverspendNotifier
	if cfg.DiscordEnabled() {
		discord, err := notify.NewDiscord(cfg.DiscordBotToken, cfg.DiscordChannelID, logger)
		if err != nil {
			logger.Error("Failed to initialize Discord notifier", log.FieldError, err)
			os.Exit(1)
		}
		notifier = discord
		logger.Info("Overspend alerts enabled", "channel_id", cfg.DiscordChannelID)
	}

	sessions := session.NewRegistry(cfg.SessionTTL, session.WithRegistryLogger(logger))

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Accounts:  services.NewAccountService(tables, auth.NewHasher(0), logger),
		Ledger:    services.NewLedgerService(tables, notifier, logger),
		Advice:    services.NewAdviceService(tables, ai, logger),
		Reviews:   services.NewReviewService(tables, logger),
		Sessions:  sessions,
		Readiness: tables,
		Logger:    logger,
	},
		apphttp.WithSecureCookies(cfg.SecureCookies),
		apphttp.WithTrustedProxies(cfg.TrustedProxies),
	)

	caches := cache.NewManager(logger)
	caches.Register("sessions", sessions.Cache())
	caches.Register("advice", ai.Cache())
	caches.Register("auth_rate_limit", srv.AuthLimiter())
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting FinSmart server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		cancel()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
