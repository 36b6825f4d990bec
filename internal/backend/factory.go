package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pocketledger/internal/amqp"
	"pocketledger/internal/config"
	"pocketledger/internal/storage"
	"pocketledger/internal/storage/memory"
	"pocketledger/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	t := BackendType(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:         t,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresDSN:  appConfig.PostgresDSN,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch cfg.Type {
	case SQLiteBackend:
		res, err = f.createSQLite(cfg)
	case PostgresBackend:
		res, err = f.createPostgres(ctx, cfg)
	case MemoryBackend:
		res = f.createMemory()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(res, cfg)
	return res, nil
}

func (f *DefaultFactory) createSQLite(cfg Config) (*Result, error) {
	if cfg.SQLiteDBPath == "" {
		return nil, errors.New("SQLite database path is required for sqlite backend")
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	return &Result{Store: repo, Ready: repo.Ping, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createPostgres(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.PostgresDSN == "" {
		return nil, errors.New("postgres DSN is required for postgres backend")
	}
	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
	}
	f.logger.Info("Initialized postgres backend")
	return &Result{Store: store, Ready: store.Ping, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createMemory() *Result {
	f.logger.Info("Initialized memory backend; state is lost on restart")
	return &Result{
		Store: memory.New(),
		Ready: func(context.Context) error { return nil },
	}
}

// attachPublisher connects to AMQP when configured. A broker that cannot be
// reached only disables change events.
func (f *DefaultFactory) attachPublisher(res *Result, cfg Config) {
	if cfg.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		return
	}
	f.logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	res.Publisher = client

	storeCleanup := res.Cleanup
	res.Cleanup = func() error {
		var errs []error
		if storeCleanup != nil {
			if err := storeCleanup(); err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
		}
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
		return errors.Join(errs...)
	}
}

// Close runs the cleanup function if there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}
