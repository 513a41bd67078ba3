package exchange

import (
	"context"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// Async issues both sends and both receives at once and lets the caller overlap
// interior computation with them.
type Async struct {
	base
}

var _ ports.Exchanger = (*Async)(nil)

// NewAsync creates the overlapped strategy for the rank described by topo.
func NewAsync(t ports.Transport, topo domain.Topology, opts ...Option) *Async {
	return &Async{base: newBase(t, topo, opts)}
}

// Name implements ports.Exchanger.
func (a *Async) Name() string { return StrategyAsync }

type inflight struct {
	eg           *errgroup.Group
	upper, lower []domain.Cell
}

func (p *inflight) Wait() ([]domain.Cell, []domain.Cell, error) {
	if err := p.eg.Wait(); err != nil {
		return nil, nil, err
	}
	return p.upper, p.lower, nil
}

// Start launches the operations and returns without waiting for them.
// top and bottom must stay unchanged until Wait returns.
func (a *Async) Start(ctx context.Context, gen int, top, bottom []domain.Cell) ports.Pending {
	tag := domain.HaloTag(gen)
	eg, ectx := errgroup.WithContext(ctx)
	p := &inflight{eg: eg}

	if up := a.topo.Upper(); up != domain.NoRank {
		eg.Go(func() error {
			if err := a.t.Send(ectx, up, tag, top); err != nil {
				return a.fail(gen, "upper", up, err)
			}
			return nil
		})
		eg.Go(func() error {
			row, err := a.t.Recv(ectx, up, tag)
			if err == nil {
				err = checkSize(row, len(top))
			}
			if err != nil {
				return a.fail(gen, "upper", up, err)
			}
			p.upper = row
			return nil
		})
	}

	if down := a.topo.Lower(); down != domain.NoRank {
		eg.Go(func() error {
			if err := a.t.Send(ectx, down, tag, bottom); err != nil {
				return a.fail(gen, "lower", down, err)
			}
			return nil
		})
		eg.Go(func() error {
			row, err := a.t.Recv(ectx, down, tag)
			if err == nil {
				err = checkSize(row, len(bottom))
			}
			if err != nil {
				return a.fail(gen, "lower", down, err)
			}
			p.lower = row
			return nil
		})
	}

	return p
}
