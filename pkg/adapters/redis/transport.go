package redis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Transport implements ports.Transport with one Redis list per (sender, receiver, tag).
// Payloads travel as one byte per cell.
type Transport struct {
	client *backend.Client
	rank   int
	size   int
	settings
	closed atomic.Bool
}

var _ ports.Transport = (*Transport)(nil)

// NewTransport creates the endpoint of rank in a run of size ranks.
// The client is shared and is not closed by Close.
func NewTransport(client *backend.Client, rank, size int, opts ...Option) *Transport {
	return &Transport{
		client:   client,
		rank:     rank,
		size:     size,
		settings: apply(opts),
	}
}

// Rank implements ports.Transport.
func (t *Transport) Rank() int { return t.rank }

// Size implements ports.Transport.
func (t *Transport) Size() int { return t.size }

func (t *Transport) key(from, to int, tag domain.Tag) string {
	return fmt.Sprintf("%s%d:%d:%s:%d", t.ns(), from, to, tag.Kind, tag.Generation)
}

func (t *Transport) check(peer int) error {
	if t.closed.Load() {
		return domain.ErrTransportClosed
	}
	if peer < 0 || peer >= t.size {
		return fmt.Errorf("rank %d outside of 0..%d", peer, t.size-1)
	}
	return nil
}

// Send pushes payload to the list read by rank to.
func (t *Transport) Send(ctx context.Context, to int, tag domain.Tag, payload []domain.Cell) error {
	if err := t.check(to); err != nil {
		return err
	}
	key := t.key(t.rank, to, tag)

	pipe := t.client.Pipeline()
	pipe.RPush(ctx, key, encode(payload))
	if t.ttl > 0 {
		pipe.Expire(ctx, key, t.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push %s to rank %d: %w", tag, to, err)
	}
	return nil
}

// Recv pops the next payload sent by rank from with tag, waiting until one arrives.
func (t *Transport) Recv(ctx context.Context, from int, tag domain.Tag) ([]domain.Cell, error) {
	if err := t.check(from); err != nil {
		return nil, err
	}
	key := t.key(from, t.rank, tag)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.closed.Load() {
			return nil, domain.ErrTransportClosed
		}
		res, err := t.client.BLPop(ctx, t.poll, key).Result()
		if errors.Is(err, backend.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to pop %s from rank %d: %w", tag, from, err)
		}
		// res is [key, value]
		return decode(res[1]), nil
	}
}

// Close marks the endpoint as closed.
func (t *Transport) Close() error {
	t.closed.Store(true)
	return nil
}

func encode(cells []domain.Cell) []byte {
	buf := make([]byte, len(cells))
	for i, c := range cells {
		buf[i] = byte(c)
	}
	return buf
}

func decode(s string) []domain.Cell {
	cells := make([]domain.Cell, len(s))
	for i := 0; i < len(s); i++ {
		cells[i] = domain.Cell(s[i])
	}
	return cells
}
