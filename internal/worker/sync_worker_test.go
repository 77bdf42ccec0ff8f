package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"smartbills/internal/amqp"
	"smartbills/internal/core"
	"smartbills/internal/sheets"
	sheetsmem "smartbills/internal/sheets/memory"
	"smartbills/internal/storage"
)

type fakeSyncStore struct {
	mu      sync.Mutex
	rows    map[int64]storage.SyncRow
	pending []storage.PendingSync
	synced  []int64
	errored []int64
}

func (f *fakeSyncStore) GetSyncRow(ctx context.Context, id int64) (storage.SyncRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return storage.SyncRow{}, storage.ErrNotFound
	}
	return row, nil
}

func (f *fakeSyncStore) GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSyncStore) MarkSynced(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeSyncStore) MarkSyncError(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errored = append(f.errored, id)
	return nil
}

type failingBackup struct{}

func (failingBackup) Upsert(ctx context.Context, row sheets.BackupRow) (string, error) {
	return "", errors.New("sheet unavailable")
}

func syncRowFixture(id int64) storage.SyncRow {
	return storage.SyncRow{
		UserID:  7,
		Version: 2,
		Subscription: core.Subscription{
			ID:       id,
			Name:     "Netflix",
			Price:    15.99,
			Currency: "GBP",
			DueDate:  core.NewDate(2024, 6, 1),
			Category: "entertainment",
			Schedule: core.Monthly,
		},
	}
}

func TestHandleSyncMessage(t *testing.T) {
	store := &fakeSyncStore{rows: map[int64]storage.SyncRow{1: syncRowFixture(1)}}
	backup := sheetsmem.New()
	w := NewSyncWorker(store, backup, 10)

	msg := amqp.NewSubscriptionSyncMessage(1, 2)
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	row, ok := backup.Row(1)
	if !ok {
		t.Fatal("subscription was not written to the backup")
	}
	if row.Version != 2 || row.UserID != 7 || row.Subscription.Name != "Netflix" {
		t.Errorf("backup row = %+v, want version 2 user 7 Netflix", row)
	}
	if len(store.synced) != 1 || store.synced[0] != 1 {
		t.Errorf("synced rows = %v, want [1]", store.synced)
	}
}

func TestHandleSyncMessageTombstone(t *testing.T) {
	row := syncRowFixture(3)
	row.Deleted = true
	store := &fakeSyncStore{rows: map[int64]storage.SyncRow{3: row}}
	backup := sheetsmem.New()
	w := NewSyncWorker(store, backup, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewSubscriptionDeleteMessage(3)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	got, ok := backup.Row(3)
	if !ok || !got.Deleted {
		t.Errorf("backup row = %+v, %v, want deleted tombstone", got, ok)
	}
}

func TestHandleSyncMessageVanishedRow(t *testing.T) {
	store := &fakeSyncStore{rows: map[int64]storage.SyncRow{}}
	w := NewSyncWorker(store, sheetsmem.New(), 10)

	// A row hard-removed from the database is not an error worth
	// requeueing.
	if err := w.HandleSyncMessage(context.Background(), amqp.NewSubscriptionSyncMessage(99, 1)); err != nil {
		t.Errorf("HandleSyncMessage for missing row: %v", err)
	}
}

func TestHandleSyncMessageBackupFailure(t *testing.T) {
	store := &fakeSyncStore{rows: map[int64]storage.SyncRow{1: syncRowFixture(1)}}
	w := NewSyncWorker(store, failingBackup{}, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewSubscriptionSyncMessage(1, 2)); err == nil {
		t.Error("HandleSyncMessage should fail when the backup write fails")
	}
	if len(store.errored) != 1 || store.errored[0] != 1 {
		t.Errorf("errored rows = %v, want [1]", store.errored)
	}
	if len(store.synced) != 0 {
		t.Errorf("synced rows = %v, want none", store.synced)
	}
}

func TestProcessPendingSubscriptions(t *testing.T) {
	store := &fakeSyncStore{
		rows: map[int64]storage.SyncRow{
			1: syncRowFixture(1),
			2: syncRowFixture(2),
			3: syncRowFixture(3),
		},
		pending: []storage.PendingSync{{ID: 1, Version: 2}, {ID: 2, Version: 2}, {ID: 3, Version: 2}},
	}
	backup := sheetsmem.New()
	w := NewSyncWorker(store, backup, 10)

	if err := w.ProcessPendingSubscriptions(context.Background()); err != nil {
		t.Fatalf("ProcessPendingSubscriptions: %v", err)
	}

	if backup.Len() != 3 {
		t.Errorf("backup holds %d rows, want 3", backup.Len())
	}
	if len(store.synced) != 3 {
		t.Errorf("synced %d rows, want 3", len(store.synced))
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	store := &fakeSyncStore{
		rows: map[int64]storage.SyncRow{
			1: syncRowFixture(1),
			2: syncRowFixture(2),
		},
		pending: []storage.PendingSync{{ID: 1}, {ID: 2}},
	}
	backup := sheetsmem.New()
	w := NewSyncWorker(store, backup, 1)

	if err := w.ProcessPendingSubscriptions(context.Background()); err != nil {
		t.Fatalf("ProcessPendingSubscriptions: %v", err)
	}
	if backup.Len() != 1 {
		t.Errorf("backup holds %d rows, want 1 with batch size 1", backup.Len())
	}
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	store := &fakeSyncStore{
		rows: map[int64]storage.SyncRow{
			2: syncRowFixture(2),
		},
		// Row 1 has no backing data, row 2 syncs fine.
		pending: []storage.PendingSync{{ID: 1}, {ID: 2}},
	}
	backup := sheetsmem.New()
	w := NewSyncWorker(store, backup, 10)

	if err := w.ProcessPendingSubscriptions(context.Background()); err != nil {
		t.Fatalf("ProcessPendingSubscriptions: %v", err)
	}
	if _, ok := backup.Row(2); !ok {
		t.Error("row 2 should still sync when row 1 fails")
	}
}

func TestProcessPendingEmpty(t *testing.T) {
	w := NewSyncWorker(&fakeSyncStore{}, sheetsmem.New(), 10)
	if err := w.ProcessPendingSubscriptions(context.Background()); err != nil {
		t.Errorf("ProcessPendingSubscriptions with empty queue: %v", err)
	}
}
