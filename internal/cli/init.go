// Package cli provides common process bootstrap shared by cmd/finsmart and
// cmd/finsmart-worker: env file, logger, configuration, backend and
// shutdown signals.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finsmart/internal/backend"
	"finsmart/internal/config"
	"finsmart/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads the environment and runs validate over it. It exits the
// process when either step fails; there is nothing to run without config.
func LoadConfig(validate func(*config.Config) error) *config.Config {
	bootstrap := log.New(log.DefaultConfig())
	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("Failed to load configuration", log.FieldError, err)
		os.Exit(1)
	}
	if err := validate(cfg); err != nil {
		bootstrap.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// makes it the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.JSON = cfg.LogFormat == "json"
	lc.Component = component
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// OpenBackend creates the medium selected by DATA_BACKEND or exits.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (backend.Factory, backend.Config, *backend.BackendResult) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, bc)
	if err != nil {
		logger.Error("Failed to initialize storage backend", log.FieldError, err, "backend", bc.Type.String())
		os.Exit(1)
	}
	logger.Info("Storage backend ready", "backend", bc.Type.String())
	return factory, bc, res
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
