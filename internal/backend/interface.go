package backend

import (
	"context"

	"pocketledger/internal/ledger"
	"pocketledger/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result holds the opened store, the optional change publisher and a
// readiness probe.
type Result struct {
	Store     ledger.Store
	Publisher services.Publisher // nil when AMQP is not configured
	Ready     func(ctx context.Context) error
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresDSN  string

	// Optional change notifications
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
