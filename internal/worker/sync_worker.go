// Package worker synchronizes subscription rows from SQLite to the
// Google Sheets backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"smartbills/internal/amqp"
	"smartbills/internal/sheets"
	"smartbills/internal/storage"
)

// SyncStore is the storage surface the worker needs. Rows are marked
// synced or errored so the periodic sweep can retry failures.
type SyncStore interface {
	GetSyncRow(ctx context.Context, id int64) (storage.SyncRow, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker pushes subscription rows to the backup sheet, driven by
// queue messages with a periodic sweep as a safety net.
type SyncWorker struct {
	store     SyncStore
	backup    sheets.BackupWriter
	batchSize int
}

func NewSyncWorker(store SyncStore, backup sheets.BackupWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		backup:    backup,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one queue message. The message carries
// only an ID; current state comes from the database, so replayed or
// stale messages simply re-sync the latest version.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SubscriptionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version,
		"deleted", msg.Deleted)

	return w.syncRow(ctx, msg.ID)
}

// syncRow reads the current row and upserts it into the backup sheet.
// Soft-deleted rows become tombstones rather than disappearing.
func (w *SyncWorker) syncRow(ctx context.Context, id int64) error {
	row, err := w.store.GetSyncRow(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Row is gone entirely, nothing left to back up.
			slog.WarnContext(ctx, "Subscription vanished before sync", "id", id)
			return nil
		}
		return fmt.Errorf("get subscription from storage: %w", err)
	}

	backupRow := sheets.BackupRow{
		ID:           id,
		UserID:       row.UserID,
		Subscription: row.Subscription,
		Version:      row.Version,
		Deleted:      row.Deleted,
	}

	ref, err := w.backup.Upsert(ctx, backupRow)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("upsert to backup sheet: %w", err)
	}

	if err := w.store.MarkSynced(ctx, id); err != nil {
		// The sync itself worked, only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Synced subscription",
		"id", id,
		"version", row.Version,
		"deleted", row.Deleted,
		"sheets_ref", ref)

	return nil
}

// ProcessPendingSubscriptions syncs rows still marked pending. This is
// the safety net for lost queue messages. Rows in a batch are synced
// concurrently; per-row failures are recorded and do not stop the
// batch.
func (w *SyncWorker) ProcessPendingSubscriptions(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger backlog once at worker startup to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.store.GetPendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending subscriptions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending subscriptions", "count", len(pending))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, p := range pending {
		g.Go(func() error {
			if err := w.syncRow(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to sync subscription",
					"id", p.ID, "error", err)
			}
			// Row errors are already recorded, keep the batch going.
			return nil
		})
	}

	return g.Wait()
}
