package sheets

import (
	"context"

	"smartbills/internal/core"
)

// BackupRow is one subscription as written to the backup sheet. Deleted
// rows stay in the sheet as tombstones so the history is auditable.
type BackupRow struct {
	ID           int64
	UserID       int64
	Subscription core.Subscription
	Version      int64
	Deleted      bool
}

// Ports for outbound adapters.
type (
	// BackupWriter mirrors subscription rows into an external backup.
	BackupWriter interface {
		// Upsert writes the row, replacing any earlier version of the
		// same subscription, and returns a reference to where it landed.
		Upsert(ctx context.Context, row BackupRow) (rowRef string, err error)
	}
)
