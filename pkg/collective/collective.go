// Package collective builds the paired and group operations the simulation needs on
// top of point-to-point ports.Transport messages.
package collective

import (
	"context"
	"fmt"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// SendRecv sends out to peer and receives peer's message under the same tag as one
// combined operation. The send runs concurrently with the receive, so two neighbours
// calling SendRecv on each other at the same time never deadlock, whatever the
// transport's buffering.
func SendRecv(ctx context.Context, t ports.Transport, peer int, tag domain.Tag, out []domain.Cell) ([]domain.Cell, error) {
	eg, ectx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := t.Send(ectx, peer, tag, out); err != nil {
			return fmt.Errorf("send to rank %d: %w", peer, err)
		}
		return nil
	})

	var in []domain.Cell
	eg.Go(func() error {
		msg, err := t.Recv(ectx, peer, tag)
		if err != nil {
			return fmt.Errorf("recv from rank %d: %w", peer, err)
		}
		in = msg
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// Barrier blocks until every rank of t has entered barrier n. Rank 0 collects one
// arrival token from every other rank and then releases them all.
func Barrier(ctx context.Context, t ports.Transport, n int) error {
	tag := domain.BarrierTag(n)
	size := t.Size()

	if t.Rank() != 0 {
		if err := t.Send(ctx, 0, tag, nil); err != nil {
			return fmt.Errorf("barrier %d arrive: %w", n, err)
		}
		if _, err := t.Recv(ctx, 0, tag); err != nil {
			return fmt.Errorf("barrier %d release: %w", n, err)
		}
		return nil
	}

	eg, ectx := errgroup.WithContext(ctx)
	for r := 1; r < size; r++ {
		eg.Go(func() error {
			if _, err := t.Recv(ectx, r, tag); err != nil {
				return fmt.Errorf("barrier %d wait rank %d: %w", n, r, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for r := 1; r < size; r++ {
		if err := t.Send(ctx, r, tag, nil); err != nil {
			return fmt.Errorf("barrier %d release rank %d: %w", n, r, err)
		}
	}
	return nil
}
