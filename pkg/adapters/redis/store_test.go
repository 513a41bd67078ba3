package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/halo/pkg/adapters/redis"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	store := redis.NewFromClient(redis.NewClient(mr.Addr(), "", 0))
	defer store.Close()
	ports.RunSnapshotStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := redis.NewFromClient(redis.NewClient(mr.Addr(), "", 0), redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Snapshot{Generation: 4, Width: 1, Height: 1, Cells: []domain.Cell{1}}))
	_, err = store.Load(ctx, 4)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, 4)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestRedisStore_PrefixAndRun(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(mr.Addr(), "", 0)
	a := redis.NewFromClient(client, redis.WithPrefix("custom:"), redis.WithRunID("a"))
	b := redis.NewFromClient(client, redis.WithPrefix("custom:"), redis.WithRunID("b"))
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, &domain.Snapshot{Generation: 0, Width: 1, Height: 1, Cells: []domain.Cell{0}}))

	assert.True(t, mr.Exists("custom:a:snapshot:0"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:a:snapshots"), "Expected index with custom prefix to exist")

	gens, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, gens, "runs must not see each other's snapshots")
}
