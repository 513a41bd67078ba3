package exchange

import (
	"context"

	"github.com/aretw0/halo/pkg/collective"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
)

// Sync exchanges with the upper neighbour and then the lower neighbour, each as a
// single combined send+receive.
type Sync struct {
	base
}

var _ ports.Exchanger = (*Sync)(nil)

// NewSync creates the blocking strategy for the rank described by topo.
func NewSync(t ports.Transport, topo domain.Topology, opts ...Option) *Sync {
	return &Sync{base: newBase(t, topo, opts)}
}

// Name implements ports.Exchanger.
func (s *Sync) Name() string { return StrategySync }

// Start performs the whole exchange before returning.
func (s *Sync) Start(ctx context.Context, gen int, top, bottom []domain.Cell) ports.Pending {
	tag := domain.HaloTag(gen)
	var res done

	if up := s.topo.Upper(); up != domain.NoRank {
		row, err := collective.SendRecv(ctx, s.t, up, tag, top)
		if err == nil {
			err = checkSize(row, len(top))
		}
		if err != nil {
			return done{err: s.fail(gen, "upper", up, err)}
		}
		res.upper = row
	}

	if down := s.topo.Lower(); down != domain.NoRank {
		row, err := collective.SendRecv(ctx, s.t, down, tag, bottom)
		if err == nil {
			err = checkSize(row, len(bottom))
		}
		if err != nil {
			return done{err: s.fail(gen, "lower", down, err)}
		}
		res.lower = row
	}

	return res
}
