package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pocketledger/internal/amqp"
	"pocketledger/internal/ledger"
	"pocketledger/internal/sheets"
)

// MirrorWorker keeps the spreadsheet copy in step with the shared store.
// Change messages only say that something moved; the worker always reloads
// the whole ledger and rewrites the mirror.
type MirrorWorker struct {
	store  ledger.Store
	writer sheets.SnapshotWriter
	opts   []ledger.Option
	logger *slog.Logger

	mu       sync.Mutex // serialises mirror writes
	lastSync time.Time
}

func NewMirrorWorker(store ledger.Store, writer sheets.SnapshotWriter, logger *slog.Logger, opts ...ledger.Option) *MirrorWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{
		store:  store,
		writer: writer,
		opts:   opts,
		logger: logger,
	}
}

// HandleChange is the amqp.Handler for change notifications.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing change message",
		"kind", msg.Kind,
		"transaction_id", msg.TransactionID,
		"slot", msg.Slot)

	if err := w.Sync(ctx); err != nil {
		return fmt.Errorf("mirror after %s: %w", msg.Kind, err)
	}
	return nil
}

// Sync reloads the ledger from the store and rewrites the mirror.
func (w *MirrorWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, err := ledger.Open(ctx, w.store, w.opts...)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	snap := l.Snapshot("")
	if err := w.writer.WriteSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	w.lastSync = snap.At

	w.logger.InfoContext(ctx, "Mirror updated",
		"transactions", snap.TotalCount,
		"currency", snap.Currency)
	return nil
}

// LastSync reports the clock instant of the last successful mirror write.
func (w *MirrorWorker) LastSync() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSync
}

// RunReconcile mirrors once immediately and then every interval until ctx
// is cancelled. It recovers from lost or rejected messages.
func (w *MirrorWorker) RunReconcile(ctx context.Context, interval time.Duration) {
	if err := w.Sync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup mirror failed", "error", err)
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic mirror failed", "error", err)
			}
		}
	}
}
