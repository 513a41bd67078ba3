package ports

import (
	"context"

	"github.com/aretw0/halo/pkg/domain"
)

// Exchanger swaps a worker's boundary rows with its neighbours once per generation.
type Exchanger interface {
	// Start begins the exchange of top and bottom, the current boundary rows, for
	// generation gen. Blocking strategies finish the exchange before returning;
	// overlapped strategies return while it is still in flight.
	Start(ctx context.Context, gen int, top, bottom []domain.Cell) Pending

	// Name identifies the strategy in logs and metrics.
	Name() string
}

// Pending is an exchange that may still be in flight.
type Pending interface {
	// Wait blocks until every send and receive of the exchange has completed and
	// returns the neighbour rows. A nil row means there is no neighbour on that side.
	Wait() (upper, lower []domain.Cell, err error)
}

// Exchange runs a full exchange and waits for it.
func Exchange(ctx context.Context, ex Exchanger, gen int, top, bottom []domain.Cell) (upper, lower []domain.Cell, err error) {
	return ex.Start(ctx, gen, top, bottom).Wait()
}
