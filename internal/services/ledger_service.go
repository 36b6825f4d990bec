package services

import (
	"context"
	"log/slog"

	"pocketledger/internal/amqp"
	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
)

// Publisher announces ledger changes to other processes.
type Publisher interface {
	Publish(ctx context.Context, msg *amqp.ChangeMessage) error
}

// LedgerService applies mutations to the ledger and then announces them.
// Announcing is best effort: a publish failure is logged and the mutation
// still counts as done.
type LedgerService struct {
	ledger    *ledger.Ledger
	publisher Publisher
	logger    *applog.Logger
}

type ServiceOption func(*LedgerService)

// WithLogger sets the logger used when the context carries none.
func WithLogger(l *applog.Logger) ServiceOption {
	return func(s *LedgerService) { s.logger = l }
}

// NewLedgerService wires l to an optional publisher (nil disables events).
func NewLedgerService(l *ledger.Ledger, publisher Publisher, opts ...ServiceOption) *LedgerService {
	s := &LedgerService{
		ledger:    l,
		publisher: publisher,
		logger: applog.New(applog.Config{
			Component: applog.ComponentLedger,
			Handler:   slog.Default().Handler(),
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log prefers the request-scoped logger so records keep the request id.
func (s *LedgerService) log(ctx context.Context) *applog.Logger {
	return applog.FromContextOr(ctx, s.logger)
}

// Ledger exposes the underlying state for reads.
func (s *LedgerService) Ledger() *ledger.Ledger {
	return s.ledger
}

func (s *LedgerService) AddTransaction(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	t, err := s.ledger.Add(ctx, d)
	if err != nil {
		return core.Transaction{}, err
	}
	applog.NewStructuredLogger(s.log(ctx)).
		LogTransactionAdded(ctx, t.ID, string(t.Type), t.Category, t.Amount.Cents)
	s.publish(ctx, amqp.NewChangeMessage(amqp.TransactionAdded, t.ID, ledger.KeyTransactions))
	return t, nil
}

// RemoveTransaction deletes id. Unknown ids are a no-op and publish nothing.
func (s *LedgerService) RemoveTransaction(ctx context.Context, id string) error {
	removed, err := s.ledger.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		s.log(ctx).DebugContext(ctx, "Remove ignored unknown transaction", applog.FieldTransactionID, id)
		return nil
	}
	s.log(ctx).InfoContext(ctx, "Transaction removed",
		applog.FieldTransactionID, id, applog.FieldOperation, applog.OpRemove)
	s.publish(ctx, amqp.NewChangeMessage(amqp.TransactionRemoved, id, ledger.KeyTransactions))
	return nil
}

func (s *LedgerService) SetStartingBalance(ctx context.Context, m core.Money) error {
	if err := s.ledger.SetStartingBalance(ctx, m); err != nil {
		return err
	}
	s.settingsChanged(ctx, ledger.KeyInitialBalance)
	return nil
}

func (s *LedgerService) SetBudget(ctx context.Context, m core.Money) error {
	if err := s.ledger.SetBudget(ctx, m); err != nil {
		return err
	}
	s.settingsChanged(ctx, ledger.KeyBudget)
	return nil
}

func (s *LedgerService) SetCurrency(ctx context.Context, code string) error {
	if err := s.ledger.SetCurrency(ctx, code); err != nil {
		return err
	}
	s.settingsChanged(ctx, ledger.KeyCurrency)
	return nil
}

func (s *LedgerService) settingsChanged(ctx context.Context, slot string) {
	s.log(ctx).InfoContext(ctx, "Setting updated",
		applog.FieldSlot, slot, applog.FieldOperation, applog.OpSettings)
	s.publish(ctx, amqp.NewChangeMessage(amqp.SettingsChanged, "", slot))
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.ChangeMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.log(ctx).ErrorContext(ctx, "Failed to publish ledger change",
			"kind", msg.Kind, applog.FieldTransactionID, msg.TransactionID, applog.FieldError, err)
	}
}
