package ports

import (
	"context"
	"testing"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract. The store must be empty.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()

	snap := func(gen int) *domain.Snapshot {
		return &domain.Snapshot{
			Generation: gen,
			Width:      3,
			Height:     2,
			Cells:      []domain.Cell{0, 1, 0, 1, 1, domain.Cell(gen % 2)},
			Seams:      []int{1},
		}
	}

	t.Run("Empty", func(t *testing.T) {
		_, err := store.Latest(ctx)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

		gens, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, gens)
	})

	t.Run("Save and Load", func(t *testing.T) {
		in := snap(0)
		require.NoError(t, store.Save(ctx, in), "Save should not return error")

		loaded, err := store.Load(ctx, 0)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, in.Width, loaded.Width)
		assert.Equal(t, in.Height, loaded.Height)
		assert.Equal(t, in.Cells, loaded.Cells)
		assert.Equal(t, in.Seams, loaded.Seams)
	})

	t.Run("Saved snapshot is isolated from caller", func(t *testing.T) {
		in := snap(1)
		require.NoError(t, store.Save(ctx, in))
		in.Cells[0] = domain.Alive

		loaded, err := store.Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.Dead, loaded.Cells[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Latest and List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, snap(3)))
		require.NoError(t, store.Save(ctx, snap(2)))

		latest, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, latest.Generation)

		gens, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3}, gens)
	})
}
