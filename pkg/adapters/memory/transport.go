package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
)

type mailboxKey struct {
	from, to int
	tag      domain.Tag
}

// Hub connects a fixed number of in-process endpoints, one per rank.
// Each (from, to, tag) address gets a one-slot mailbox created on first use by either
// side and dropped after delivery.
// Safe for concurrent use.
type Hub struct {
	size  int
	mu    sync.Mutex
	boxes map[mailboxKey]chan []domain.Cell
}

// NewHub creates a hub for ranks 0..size-1.
func NewHub(size int) *Hub {
	return &Hub{
		size:  size,
		boxes: make(map[mailboxKey]chan []domain.Cell),
	}
}

// Endpoint returns the transport of rank.
func (h *Hub) Endpoint(rank int) *Endpoint {
	return &Endpoint{hub: h, rank: rank}
}

// Endpoints returns one transport per rank, ordered by rank.
func (h *Hub) Endpoints() []ports.Transport {
	out := make([]ports.Transport, h.size)
	for i := range out {
		out[i] = h.Endpoint(i)
	}
	return out
}

// Pending reports how many mailboxes are waiting for a sender or a receiver.
func (h *Hub) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.boxes)
}

func (h *Hub) box(k mailboxKey) chan []domain.Cell {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.boxes[k]
	if !ok {
		ch = make(chan []domain.Cell, 1)
		h.boxes[k] = ch
	}
	return ch
}

func (h *Hub) release(k mailboxKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.boxes, k)
}

// Endpoint implements ports.Transport for one rank of a Hub.
type Endpoint struct {
	hub    *Hub
	rank   int
	closed atomic.Bool
}

var _ ports.Transport = (*Endpoint)(nil)

// Rank implements ports.Transport.
func (e *Endpoint) Rank() int { return e.rank }

// Size implements ports.Transport.
func (e *Endpoint) Size() int { return e.hub.size }

func (e *Endpoint) check(peer int) error {
	if e.closed.Load() {
		return domain.ErrTransportClosed
	}
	if peer < 0 || peer >= e.hub.size {
		return fmt.Errorf("rank %d out of range [0,%d)", peer, e.hub.size)
	}
	return nil
}

// Send copies payload into the mailbox of (e.rank, to, tag).
func (e *Endpoint) Send(ctx context.Context, to int, tag domain.Tag, payload []domain.Cell) error {
	if err := e.check(to); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := append([]domain.Cell(nil), payload...)
	select {
	case e.hub.box(mailboxKey{from: e.rank, to: to, tag: tag}) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv waits for the message of (from, e.rank, tag).
func (e *Endpoint) Recv(ctx context.Context, from int, tag domain.Tag) ([]domain.Cell, error) {
	if err := e.check(from); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := mailboxKey{from: from, to: e.rank, tag: tag}
	select {
	case msg := <-e.hub.box(k):
		e.hub.release(k)
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close marks the endpoint closed.
func (e *Endpoint) Close() error {
	e.closed.Store(true)
	return nil
}
