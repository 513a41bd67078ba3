package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/halo/pkg/domain"
)

// SnapshotStore implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type SnapshotStore struct {
	data map[int]*domain.Snapshot
	mu   sync.RWMutex
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[int]*domain.Snapshot),
	}
}

// Save keeps a deep copy of snap, similar to serialization.
func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	copied := snap.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.Generation] = copied
	return nil
}

// Load returns a copy so callers can't mutate the stored snapshot.
func (s *SnapshotStore) Load(ctx context.Context, generation int) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[generation]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap.Clone(), nil
}

// Latest returns the snapshot with the highest generation.
func (s *SnapshotStore) Latest(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Snapshot
	for _, snap := range s.data {
		if latest == nil || snap.Generation > latest.Generation {
			latest = snap
		}
	}
	if latest == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return latest.Clone(), nil
}

// List returns stored generations in ascending order.
func (s *SnapshotStore) List(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gens := make([]int, 0, len(s.data))
	for g := range s.data {
		gens = append(gens, g)
	}
	slices.Sort(gens)
	return gens, nil
}
