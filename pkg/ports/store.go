package ports

import (
	"context"
	"errors"

	"github.com/aretw0/halo/pkg/domain"
)

// SnapshotSink receives a full-grid snapshot after every generation.
type SnapshotSink interface {
	Save(ctx context.Context, snap *domain.Snapshot) error
}

// SnapshotStore is a SnapshotSink that can serve snapshots back.
type SnapshotStore interface {
	SnapshotSink

	// Load retrieves the snapshot of a generation.
	// Returns domain.ErrSnapshotNotFound if the generation was never saved.
	Load(ctx context.Context, generation int) (*domain.Snapshot, error)

	// Latest returns the snapshot with the highest generation.
	// Returns domain.ErrSnapshotNotFound if the store is empty.
	Latest(ctx context.Context) (*domain.Snapshot, error)

	// List returns the stored generations in ascending order.
	List(ctx context.Context) ([]int, error)
}

// SinkFunc adapts a function to SnapshotSink.
type SinkFunc func(ctx context.Context, snap *domain.Snapshot) error

// Save calls f.
func (f SinkFunc) Save(ctx context.Context, snap *domain.Snapshot) error {
	return f(ctx, snap)
}

// MultiSink saves every snapshot to each sink in order and joins their errors.
type MultiSink []SnapshotSink

// Save implements SnapshotSink.
func (m MultiSink) Save(ctx context.Context, snap *domain.Snapshot) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
