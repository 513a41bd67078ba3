package pgm_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/halo/pkg/adapters/pgm"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGMStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, pgm.New(t.TempDir()))
}

func TestEncode_Levels(t *testing.T) {
	snap := &domain.Snapshot{
		Generation: 2,
		Width:      3,
		Height:     3,
		Cells: []domain.Cell{
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
		Seams: []int{1},
	}

	var buf bytes.Buffer
	require.NoError(t, pgm.Encode(&buf, snap))

	want := append([]byte("P5\n3 3\n255\n"),
		255, 0, 0,
		69, 255, 69,
		0, 0, 255,
	)
	assert.Equal(t, want, buf.Bytes())
}

func TestEncode_SizeMismatch(t *testing.T) {
	err := pgm.Encode(&bytes.Buffer{}, &domain.Snapshot{Width: 2, Height: 2, Cells: []domain.Cell{1}})
	assert.ErrorIs(t, err, domain.ErrPayloadSize)
}

func TestDecode_Truncated(t *testing.T) {
	_, err := pgm.Decode(bytes.NewReader([]byte("P5\n2 2\n255\n\xff")))
	assert.ErrorIs(t, err, domain.ErrPayloadSize)

	_, err = pgm.Decode(bytes.NewReader([]byte("P2\n2 2\n255\n0 0 0 0")))
	assert.Error(t, err)
}

func TestPGMStore_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	store := pgm.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Snapshot{Generation: 12, Width: 1, Height: 1, Cells: []domain.Cell{1}}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	_, err := os.Stat(filepath.Join(dir, "snapshot_12.pgm"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files are left behind")

	gens, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, gens)
}
