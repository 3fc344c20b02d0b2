package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/sheets"
	"budget/internal/storage"
)

// SyncWorker mirrors transaction changes into the spreadsheet exporter.
type SyncWorker struct {
	store    storage.TransactionStore
	exporter sheets.TransactionExporter
}

func NewSyncWorker(store storage.TransactionStore, exporter sheets.TransactionExporter) *SyncWorker {
	return &SyncWorker{store: store, exporter: exporter}
}

// Handle applies one event. Created and updated events re-read the row so
// the sheet always reflects the current state; a row deleted in the meantime
// is removed instead.
func (w *SyncWorker) Handle(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"component", "worker",
		"event", ev.Event,
		"transaction_id", ev.TransactionID)

	switch ev.Event {
	case amqp.EventTransactionCreated, amqp.EventTransactionUpdated:
		t, err := w.store.GetTransaction(ctx, ev.OwnerID, ev.TransactionID)
		if errors.Is(err, storage.ErrNotFound) {
			return w.remove(ctx, ev.TransactionID)
		}
		if err != nil {
			return fmt.Errorf("load transaction: %w", err)
		}
		if err := w.exporter.Upsert(ctx, t); err != nil {
			return fmt.Errorf("export transaction: %w", err)
		}
		return nil

	case amqp.EventTransactionDeleted:
		return w.remove(ctx, ev.TransactionID)

	default:
		// Unknown events are acknowledged and dropped.
		slog.WarnContext(ctx, "Ignoring unknown event", "component", "worker", "event", ev.Event)
		return nil
	}
}

func (w *SyncWorker) remove(ctx context.Context, id string) error {
	if err := w.exporter.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove exported row: %w", err)
	}
	return nil
}

// ResyncOwner re-exports every transaction of ownerID and returns how many
// rows were written. It stops at the first failure.
func (w *SyncWorker) ResyncOwner(ctx context.Context, ownerID string) (int, error) {
	txs, err := w.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	for i, t := range txs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := w.exporter.Upsert(ctx, t); err != nil {
			return i, fmt.Errorf("export transaction %s: %w", t.ID, err)
		}
	}

	slog.InfoContext(ctx, "Resynced owner transactions",
		"component", "worker",
		"user_id", ownerID,
		"count", len(txs))
	return len(txs), nil
}
