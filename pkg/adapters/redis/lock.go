package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/halo/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// releaseScript deletes the claim only while it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Claimer implements ports.RankClaimer using Redis SET NX.
type Claimer struct {
	client *backend.Client
	settings
}

var _ ports.RankClaimer = (*Claimer)(nil)

// NewClaimer creates a new Redis rank claimer.
func NewClaimer(client *backend.Client, opts ...Option) *Claimer {
	return &Claimer{
		client:   client,
		settings: apply(opts),
	}
}

func (c *Claimer) key(rank int) string {
	return fmt.Sprintf("%srank:%d", c.ns(), rank)
}

// Claim takes the lowest free rank, polling until one is free or ctx is done.
func (c *Claimer) Claim(ctx context.Context, size int) (int, ports.ReleaseFunc, error) {
	token := uuid.NewString()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		for rank := 0; rank < size; rank++ {
			key := c.key(rank)
			ok, err := c.client.SetNX(ctx, key, token, c.ttl).Result()
			if err != nil {
				return 0, nil, fmt.Errorf("redis error claiming rank %d: %w", rank, err)
			}
			if ok {
				return rank, func(ctx context.Context) error {
					return c.client.Eval(ctx, releaseScript, []string{key}, token).Err()
				}, nil
			}
		}

		select {
		case <-ctx.Done():
			return 0, nil, fmt.Errorf("all %d ranks are taken: %w", size, ctx.Err())
		case <-ticker.C:
		}
	}
}
