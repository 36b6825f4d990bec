// Package cli holds the startup steps shared by cmd/ledger,
// cmd/ledger-worker and cmd/ledgerctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"pocketledger/internal/backend"
	"pocketledger/internal/config"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
)

// SetupLogger builds a text logger at the given level and makes it the
// process default.
func SetupLogger(level, component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: component,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and runs the given checks in
// order. cfg.Validate always runs first.
func LoadAndValidateConfig(extra ...func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, check := range extra {
		if err := check(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LedgerOptions turns configured defaults into ledger options.
func LedgerOptions(cfg *config.Config) []ledger.Option {
	return []ledger.Option{ledger.WithDefaults(cfg.DefaultBudgetMoney(), cfg.DefaultCurrency)}
}

// OpenBackend creates the configured store (and publisher, when AMQP is set).
func OpenBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned stop func releases the signal handler.
func GracefulShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
