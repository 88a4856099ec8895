package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jard/internal/amqp"
	"jard/internal/core"
	"jard/internal/services"
)

// Inventory is the part of the coordinator the worker drives.
type Inventory interface {
	SyncDate(ctx context.Context, date core.Date) (core.DailyInventoryRecord, error)
	SyncPending(ctx context.Context, limit int) (services.SyncResult, error)
	RefreshCategories(ctx context.Context) (int, error)
}

// SyncWorker pushes locally saved records to the hosted store when a sync
// message arrives, and sweeps the pending set as a backstop for lost
// messages.
type SyncWorker struct {
	inventory  Inventory
	batchSize  int
	retryDelay time.Duration
}

func NewSyncWorker(inventory Inventory, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		inventory:  inventory,
		batchSize:  batchSize,
		retryDelay: 5 * time.Second,
	}
}

// HandleSyncMessage processes a single inventory sync message from AMQP.
// A returned error requeues the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.InventorySyncMessage) error {
	date := msg.ParsedDate()
	slog.InfoContext(ctx, "Processing sync message",
		"inventory_date", msg.Date,
		"message_id", msg.MessageID,
		"saved_at", msg.SavedAt)

	rec, err := w.inventory.SyncDate(ctx, date)
	switch {
	case errors.Is(err, services.ErrNotFound):
		// Deleted since the message was published.
		slog.InfoContext(ctx, "No local record for sync message, dropping",
			"inventory_date", msg.Date, "message_id", msg.MessageID)
		return nil
	case errors.Is(err, services.ErrOffline), errors.Is(err, services.ErrRemoteSync):
		// Slow down redelivery while the store is unreachable.
		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
		return fmt.Errorf("sync %s: %w", msg.Date, err)
	case err != nil:
		return fmt.Errorf("sync %s: %w", msg.Date, err)
	}

	if rec.SavedAt.After(msg.SavedAt) {
		slog.DebugContext(ctx, "Synced a newer edit than the message announced",
			"inventory_date", msg.Date, "saved_at", rec.SavedAt)
	}
	return nil
}

// ProcessPending retries one batch of pending records.
// This is a backup mechanism in case AMQP messages are lost
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	res, err := w.inventory.SyncPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("sync pending records: %w", err)
	}
	if res.Attempted > 0 {
		slog.InfoContext(ctx, "Processed pending records",
			"attempted", res.Attempted, "synced", res.Synced, "failed", res.Failed)
	}
	return nil
}

// StartupSyncCheck loads categories and drains a larger batch of pending
// records, to recover from worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	if n, err := w.inventory.RefreshCategories(ctx); err != nil {
		slog.WarnContext(ctx, "Category refresh failed on startup", "error", err)
	} else {
		slog.InfoContext(ctx, "Categories loaded on startup", "count", n)
	}

	res, err := w.inventory.SyncPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("sync pending records on startup: %w", err)
	}
	if res.Attempted == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"total", res.Attempted,
		"synced", res.Synced,
		"errors", res.Failed)
	return nil
}

// Run sweeps pending records every interval until ctx is done.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
			}
		}
	}
}
