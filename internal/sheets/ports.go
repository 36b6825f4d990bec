// Package sheets defines the outbound port used to mirror the ledger into a
// spreadsheet.
package sheets

import (
	"context"

	"pocketledger/internal/ledger"
)

// SnapshotWriter replaces the mirrored copy with s. Writing the same
// snapshot twice leaves the same sheet contents.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, s ledger.Snapshot) error
}
