// Package store persists computation snapshots for run history. Source
// files stay read-only; only derived results are written.
package store

import (
	"context"

	"github.com/consultores-turismo/str-insights/internal/model"
)

// SnapshotFilter specifies criteria for listing snapshots.
type SnapshotFilter struct {
	City  string `json:"city,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Store defines the persistence interface for computation snapshots.
type Store interface {
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.Snapshot, error)

	Migrate(ctx context.Context) error
	Close() error
}
