package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"pocketledger/internal/cli"
	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
	"pocketledger/internal/services"
)

// opener returns the ledger service to act on and a func releasing it.
type opener func(ctx context.Context) (*services.LedgerService, func() error, error)

type app struct {
	out   io.Writer
	open  opener
	clock core.Clock
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(envOr("LOG_LEVEL", "warn"), applog.ComponentApp)

	a := &app{out: os.Stdout, open: backendOpener(logger), clock: core.SystemClock{}}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// backendOpener opens the configured backend. Mutations re-read their slot
// before saving and the web app re-reads on every render, so a running
// server shows changes made here and keeps them. With AMQP configured the
// worker hears about them too.
func backendOpener(logger *applog.Logger) opener {
	return func(ctx context.Context) (*services.LedgerService, func() error, error) {
		cfg, err := cli.LoadAndValidateConfig()
		if err != nil {
			return nil, nil, err
		}
		res, err := cli.OpenBackend(ctx, logger, cfg)
		if err != nil {
			return nil, nil, err
		}
		l, err := ledger.Open(ctx, res.Store, cli.LedgerOptions(cfg)...)
		if err != nil {
			res.Close()
			return nil, nil, err
		}
		return services.NewLedgerService(l, res.Publisher,
			services.WithLogger(logger.WithComponent(applog.ComponentLedger))), res.Close, nil
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and edit the pocketledger state",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(a.out)

	root.AddCommand(
		a.summaryCmd(),
		a.listCmd(),
		a.addCmd(),
		a.rmCmd(),
		a.setBalanceCmd(),
		a.setBudgetCmd(),
		a.setCurrencyCmd(),
		a.exportCmd(),
		a.dumpCmd(),
		a.seedCmd(),
	)
	return root
}

// withLedger opens the ledger for the duration of fn.
func (a *app) withLedger(ctx context.Context, fn func(*services.LedgerService) error) error {
	svc, closeFn, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeFn != nil {
			_ = closeFn()
		}
	}()
	return fn(svc)
}
