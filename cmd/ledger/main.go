package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"pocketledger/internal/advice"
	"pocketledger/internal/cache"
	"pocketledger/internal/cli"
	"pocketledger/internal/config"
	"pocketledger/internal/core"
	apphttp "pocketledger/internal/http"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
	"pocketledger/internal/services"
)

const (
	shutdownTimeout  = 30 * time.Second
	adviceCacheSize  = 64
	cacheSweepPeriod = time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(logger *applog.Logger) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}

	ctx, stop := cli.GracefulShutdown()
	defer stop()

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	l, err := ledger.Open(ctx, res.Store, cli.LedgerOptions(cfg)...)
	if err != nil {
		return err
	}
	svc := services.NewLedgerService(l, res.Publisher,
		services.WithLogger(logger.WithComponent(applog.ComponentLedger)))

	caches := cache.NewManager(logger.WithComponent(applog.ComponentAdvice).Logger)
	advisor, err := newAdvisor(ctx, logger, cfg, caches)
	if err != nil {
		return err
	}
	caches.StartCleanup(cacheSweepPeriod)
	defer caches.Stop()

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:             svc,
		Advisor:            advisor,
		Ready:              res.Ready,
		Clock:              core.SystemClock{},
		Logger:             logger.WithComponent(applog.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting pocketledger server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			applog.FieldProvider, advisor.ProviderName(),
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newAdvisor(ctx context.Context, logger *applog.Logger, cfg *config.Config, caches *cache.Manager) (*advice.Service, error) {
	provider, err := advice.NewProvider(ctx, advice.ProviderConfig{
		Name:          cfg.AdviceProvider,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
	})
	if err != nil {
		return nil, err
	}

	opts := []advice.ServiceOption{
		advice.WithTimeout(cfg.AdviceTimeout),
		advice.WithLogger(logger.WithComponent(applog.ComponentAdvice).Logger),
	}
	if cfg.AdviceCacheTTL > 0 {
		c := cache.NewLRUCache[advice.Result](adviceCacheSize, cfg.AdviceCacheTTL)
		caches.Register(c)
		opts = append(opts, advice.WithCache(c))
	}
	return advice.NewService(provider, opts...), nil
}
