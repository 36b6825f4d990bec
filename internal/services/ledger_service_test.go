package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"pocketledger/internal/amqp"
	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
	"pocketledger/internal/storage/memory"
)

type recordingPublisher struct {
	msgs []*amqp.ChangeMessage
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, m *amqp.ChangeMessage) error {
	r.msgs = append(r.msgs, m)
	return r.err
}

func newService(t *testing.T, pub Publisher) *LedgerService {
	t.Helper()
	l, err := ledger.Open(context.Background(), memory.New())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return NewLedgerService(l, pub)
}

func coffee() core.TransactionDraft {
	return core.TransactionDraft{
		Description: "Coffee",
		Amount:      core.Money{Cents: 350},
		Type:        core.Expense,
		Category:    "Food",
		Date:        core.NewDate(2025, 3, 10),
	}
}

func TestLedgerServicePublishesChanges(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(t, pub)

	tx, err := svc.AddTransaction(ctx, coffee())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveTransaction(ctx, "unknown"); err != nil {
		t.Fatalf("remove unknown: %v", err)
	}
	if err := svc.RemoveTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.SetBudget(ctx, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("budget: %v", err)
	}
	if err := svc.SetStartingBalance(ctx, core.Money{Cents: 100}); err != nil {
		t.Fatalf("balance: %v", err)
	}
	if err := svc.SetCurrency(ctx, "EUR"); err != nil {
		t.Fatalf("currency: %v", err)
	}

	want := []struct {
		kind amqp.ChangeKind
		id   string
		slot string
	}{
		{amqp.TransactionAdded, tx.ID, ledger.KeyTransactions},
		{amqp.TransactionRemoved, tx.ID, ledger.KeyTransactions},
		{amqp.SettingsChanged, "", ledger.KeyBudget},
		{amqp.SettingsChanged, "", ledger.KeyInitialBalance},
		{amqp.SettingsChanged, "", ledger.KeyCurrency},
	}
	if len(pub.msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(pub.msgs))
	}
	for i, w := range want {
		m := pub.msgs[i]
		if m.Kind != w.kind || m.TransactionID != w.id || m.Slot != w.slot {
			t.Errorf("message %d = %+v, want %+v", i, m, w)
		}
	}
}

func TestLedgerServiceIgnoresPublishFailure(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, &recordingPublisher{err: errors.New("broker down")})

	if _, err := svc.AddTransaction(ctx, coffee()); err != nil {
		t.Fatalf("publish failure must not fail the mutation: %v", err)
	}
	if got := len(svc.Ledger().Transactions()); got != 1 {
		t.Fatalf("expected 1 transaction, got %d", got)
	}
}

func TestLedgerServiceValidationPublishesNothing(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(t, pub)

	bad := coffee()
	bad.Amount = core.Money{}
	if _, err := svc.AddTransaction(ctx, bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := svc.SetBudget(ctx, core.Money{Cents: -1}); !errors.Is(err, core.ErrNegativeBudget) {
		t.Fatalf("expected ErrNegativeBudget, got %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("no messages expected, got %d", len(pub.msgs))
	}
}

func TestLedgerServiceWithoutPublisher(t *testing.T) {
	svc := newService(t, nil)
	if _, err := svc.AddTransaction(context.Background(), coffee()); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestLedgerServiceLogsEachChangeOnce(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	l, err := ledger.Open(ctx, memory.New())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	svc := NewLedgerService(l, nil,
		WithLogger(applog.NewText(&buf, slog.LevelInfo, applog.ComponentLedger)))

	tx, err := svc.AddTransaction(ctx, coffee())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if n := strings.Count(buf.String(), "Transaction added"); n != 1 {
		t.Fatalf("add logged %d times:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "transaction_id="+tx.ID) {
		t.Fatalf("add log missing id:\n%s", buf.String())
	}

	buf.Reset()
	if err := svc.RemoveTransaction(ctx, "unknown"); err != nil {
		t.Fatalf("remove unknown: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("unknown id logged at info:\n%s", buf.String())
	}

	if err := svc.RemoveTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n := strings.Count(buf.String(), "Transaction removed"); n != 1 {
		t.Fatalf("remove logged %d times:\n%s", n, buf.String())
	}
}

func TestLedgerServicePrefersContextLogger(t *testing.T) {
	var fallback, scoped bytes.Buffer
	l, err := ledger.Open(context.Background(), memory.New())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	svc := NewLedgerService(l, nil,
		WithLogger(applog.NewText(&fallback, slog.LevelInfo, applog.ComponentLedger)))

	ctx := applog.NewContext(context.Background(),
		applog.NewText(&scoped, slog.LevelInfo, applog.ComponentHTTP).With(applog.FieldRequestID, "req-9"))
	if _, err := svc.AddTransaction(ctx, coffee()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if fallback.Len() != 0 {
		t.Errorf("fallback logger used despite context logger:\n%s", fallback.String())
	}
	if !strings.Contains(scoped.String(), "request_id=req-9") {
		t.Errorf("request id missing:\n%s", scoped.String())
	}
}
