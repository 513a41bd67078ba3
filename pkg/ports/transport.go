package ports

import (
	"context"

	"github.com/aretw0/halo/pkg/domain"
)

// Transport is the point-to-point message layer between ranks.
// Workers share no memory: boundary rows, blocks and barrier tokens all travel through it.
//
// A message is addressed by (from, to, tag). Implementations must copy the payload on
// Send so the receiver never aliases the sender's buffers, and must let Send and Recv
// for the same address run in either order.
type Transport interface {
	// Rank is the rank of the local endpoint.
	Rank() int

	// Size is the number of ranks reachable through the transport.
	Size() int

	// Send delivers payload to rank to under tag. It may return before the receiver
	// has called Recv.
	Send(ctx context.Context, to int, tag domain.Tag, payload []domain.Cell) error

	// Recv blocks until the message from rank from with tag arrives or ctx is done.
	Recv(ctx context.Context, from int, tag domain.Tag) ([]domain.Cell, error)

	// Close releases the endpoint. Further calls return domain.ErrTransportClosed.
	Close() error
}
