package pgm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
)

const (
	filePrefix = "snapshot_"
	fileExt    = ".pgm"
)

// Store implements ports.SnapshotStore on a directory of snapshot_<generation>.pgm files.
type Store struct {
	BasePath string
}

var _ ports.SnapshotStore = (*Store)(nil)

// New creates a new Store writing into basePath.
func New(basePath string) *Store {
	return &Store{BasePath: basePath}
}

// Path returns the file holding generation.
func (s *Store) Path(generation int) string {
	return filepath.Join(s.BasePath, filePrefix+strconv.Itoa(generation)+fileExt)
}

// Save writes the snapshot atomically: a temp file in the same directory is
// synced and then renamed over the destination.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure snapshot directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+filePrefix+"*"+fileExt)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	destPath := s.Path(snap.Generation)
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing snapshot for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to snapshot: %w", err)
	}
	return nil
}

// Load reads one generation back from disk.
func (s *Store) Load(ctx context.Context, generation int) (*domain.Snapshot, error) {
	f, err := os.Open(s.Path(generation))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: generation %d", domain.ErrSnapshotNotFound, generation)
		}
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	snap, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", f.Name(), err)
	}
	snap.Generation = generation
	return snap, nil
}

// Latest returns the highest generation on disk.
func (s *Store) Latest(ctx context.Context) (*domain.Snapshot, error) {
	gens, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, domain.ErrSnapshotNotFound
	}
	return s.Load(ctx, gens[len(gens)-1])
}

// List returns the generations on disk in ascending order.
func (s *Store) List(ctx context.Context) ([]int, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	gens := []int{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || filepath.Ext(name) != fileExt {
			continue
		}
		gen, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt))
		if err != nil {
			continue
		}
		gens = append(gens, gen)
	}
	sort.Ints(gens)
	return gens, nil
}
