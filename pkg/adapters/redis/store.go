package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.SnapshotStore using Redis.
// Snapshots are JSON values indexed by a sorted set scored by generation.
type Store struct {
	client *backend.Client
	settings
}

var _ ports.SnapshotStore = (*Store)(nil)

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(NewClient(address, password, db), opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	return &Store{
		client:   client,
		settings: apply(opts),
	}
}

func (s *Store) key(generation int) string {
	return s.ns() + "snapshot:" + strconv.Itoa(generation)
}

func (s *Store) indexKey() string {
	return s.ns() + "snapshots"
}

// Save persists the snapshot to Redis.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(snap.Generation), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(snap.Generation),
		Member: snap.Generation,
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves one generation from Redis.
func (s *Store) Load(ctx context.Context, generation int) (*domain.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key(generation)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: generation %d", domain.ErrSnapshotNotFound, generation)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Latest returns the highest generation stored.
func (s *Store) Latest(ctx context.Context) (*domain.Snapshot, error) {
	members, err := s.client.ZRevRange(ctx, s.indexKey(), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot index: %w", err)
	}
	if len(members) == 0 {
		return nil, domain.ErrSnapshotNotFound
	}
	gen, err := strconv.Atoi(members[0])
	if err != nil {
		return nil, fmt.Errorf("corrupt snapshot index entry %q: %w", members[0], err)
	}
	return s.Load(ctx, gen)
}

// List returns the stored generations in ascending order.
func (s *Store) List(ctx context.Context) ([]int, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	gens := make([]int, 0, len(members))
	for _, m := range members {
		gen, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt snapshot index entry %q: %w", m, err)
		}
		gens = append(gens, gen)
	}
	return gens, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
