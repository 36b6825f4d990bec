// Package ledger holds the application state: the transaction list, the
// starting balance, the monthly budget and the display currency. Each
// mutation writes back only its own slot. Several processes may share one
// Store, so list mutations re-read the slot first and readers call Refresh.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pocketledger/internal/core"
	"pocketledger/internal/currency"
)

// ErrCorruptSlot is returned by Open when a stored value cannot be decoded.
var ErrCorruptSlot = errors.New("corrupt stored value")

type Ledger struct {
	mu    sync.RWMutex
	store Store
	clock core.Clock
	newID func() string

	transactions    []core.Transaction // newest first
	startingBalance core.Money
	budget          core.Money
	currency        string
}

type Option func(*Ledger)

// WithClock overrides the clock used for the monthly figures.
func WithClock(c core.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithIDGenerator overrides transaction id generation.
func WithIDGenerator(f func() string) Option {
	return func(l *Ledger) { l.newID = f }
}

// WithDefaults sets the budget and currency used when their slots are absent.
func WithDefaults(budget core.Money, currencyCode string) Option {
	return func(l *Ledger) {
		l.budget = budget
		l.currency = currency.Normalize(currencyCode)
	}
}

// Open loads every slot from store, using defaults for absent ones.
func Open(ctx context.Context, store Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:    store,
		clock:    core.SystemClock{},
		newID:    func() string { return uuid.NewString() },
		budget:   core.DefaultBudget,
		currency: currency.Default,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.refresh(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Refresh re-reads every slot so changes saved by other processes show up.
// On error the cached state is kept.
func (l *Ledger) Refresh(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refresh(ctx)
}

// refresh requires l.mu held for writing. Absent slots keep their value.
func (l *Ledger) refresh(ctx context.Context) error {
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return err
	}
	starting, budget, cur := l.startingBalance, l.budget, l.currency
	if err := l.loadSlot(ctx, KeyInitialBalance, &starting); err != nil {
		return err
	}
	if err := l.loadSlot(ctx, KeyBudget, &budget); err != nil {
		return err
	}
	if err := l.loadSlot(ctx, KeyCurrency, &cur); err != nil {
		return err
	}
	l.transactions = txs
	l.startingBalance, l.budget, l.currency = starting, budget, cur
	return nil
}

func (l *Ledger) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs := []core.Transaction{}
	if err := l.loadSlot(ctx, KeyTransactions, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (l *Ledger) loadSlot(ctx context.Context, key string, dst any) error {
	raw, found, err := l.store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !found {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w %q: %v", ErrCorruptSlot, key, err)
	}
	return nil
}

func (l *Ledger) saveSlot(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.store.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Add validates d, assigns a fresh id and stores it as the newest record.
func (l *Ledger) Add(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.loadTransactions(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	t := d.WithID(l.newID())
	next := make([]core.Transaction, 0, len(current)+1)
	next = append(next, t)
	next = append(next, current...)
	if err := l.saveSlot(ctx, KeyTransactions, next); err != nil {
		return core.Transaction{}, err
	}
	l.transactions = next
	return t, nil
}

// Remove deletes the record with the given id. Unknown ids are ignored.
// The returned bool reports whether anything was removed.
func (l *Ledger) Remove(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.loadTransactions(ctx)
	if err != nil {
		return false, err
	}
	l.transactions = current

	idx := -1
	for i, t := range current {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	next := make([]core.Transaction, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)
	if err := l.saveSlot(ctx, KeyTransactions, next); err != nil {
		return false, err
	}
	l.transactions = next
	return true, nil
}

// Transactions returns a copy of all records, newest first.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Transaction(nil), l.transactions...)
}

// Search returns the records matching query, newest first.
func (l *Ledger) Search(query string) []core.Transaction {
	return core.Filter(l.Transactions(), query)
}

func (l *Ledger) StartingBalance() core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.startingBalance
}

func (l *Ledger) Budget() core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.budget
}

func (l *Ledger) Currency() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currency
}

// SetStartingBalance accepts any amount, negative included.
func (l *Ledger) SetStartingBalance(ctx context.Context, m core.Money) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.saveSlot(ctx, KeyInitialBalance, m); err != nil {
		return err
	}
	l.startingBalance = m
	return nil
}

func (l *Ledger) SetBudget(ctx context.Context, m core.Money) error {
	if m.Cents < 0 {
		return core.ErrNegativeBudget
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.saveSlot(ctx, KeyBudget, m); err != nil {
		return err
	}
	l.budget = m
	return nil
}

// SetCurrency stores code upper-cased. Codes that are not valid ISO 4217
// are kept as given and formatted as USD.
func (l *Ledger) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return errors.New("currency code is empty")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.saveSlot(ctx, KeyCurrency, code); err != nil {
		return err
	}
	l.currency = code
	return nil
}

// Snapshot is a consistent view of the ledger and everything derived from it.
type Snapshot struct {
	Query        string                `json:"query,omitempty"`
	Transactions []core.Transaction    `json:"transactions"`
	TotalCount   int                   `json:"totalCount"`
	Summary      core.Summary          `json:"summary"`
	Budget       core.BudgetStatus     `json:"budget"`
	Categories   []core.CategoryAmount `json:"categories"`
	Currency     string                `json:"currency"`
	At           time.Time             `json:"at"`
}

// Snapshot derives the figures at the current clock instant. Transactions
// is filtered by query; the figures always cover every record.
func (l *Ledger) Snapshot(query string) Snapshot {
	l.mu.RLock()
	all := append([]core.Transaction(nil), l.transactions...)
	starting, budget, cur := l.startingBalance, l.budget, l.currency
	l.mu.RUnlock()

	now := l.clock.Now()
	sum := core.Derive(all, starting, now)
	cats := core.AggregateExpenses(all)
	if cats == nil {
		cats = []core.CategoryAmount{}
	}
	return Snapshot{
		Query:        query,
		Transactions: core.Filter(all, query),
		TotalCount:   len(all),
		Summary:      sum,
		Budget:       core.EvaluateBudget(budget, sum.MonthlyExpense, sum.Balance),
		Categories:   cats,
		Currency:     cur,
		At:           now,
	}
}
