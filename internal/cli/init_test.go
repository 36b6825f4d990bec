package cli

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"pocketledger/internal/config"
	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
	"pocketledger/internal/storage/memory"
)

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", applog.ComponentWorker)
	if logger.Component() != applog.ComponentWorker {
		t.Errorf("component = %q", logger.Component())
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default logger should be enabled at debug")
	}
	SetupLogger("info", applog.ComponentApp)
}

func TestLedgerOptionsApplyDefaults(t *testing.T) {
	cfg := &config.Config{DefaultBudget: "250.50", DefaultCurrency: "EUR"}
	l, err := ledger.Open(context.Background(), memory.New(), LedgerOptions(cfg)...)
	if err != nil {
		t.Fatal(err)
	}
	if l.Budget() != (core.Money{Cents: 25050}) {
		t.Errorf("budget = %v", l.Budget())
	}
	if l.Currency() != "EUR" {
		t.Errorf("currency = %q", l.Currency())
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("AMQP_URL", "")

	if _, err := LoadAndValidateConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadAndValidateConfig((*config.Config).ValidateWorker); err == nil {
		t.Error("worker validation should reject the memory backend")
	}

	t.Setenv("PORT", "not-a-port")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("expected validation error for bad port")
	}
}

func TestOpenBackendMemory(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory"}
	res, err := OpenBackend(context.Background(), applog.NewText(io.Discard, slog.LevelError, "test"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if res.Publisher != nil {
		t.Error("publisher should be nil without AMQP")
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Errorf("ready: %v", err)
	}
}
