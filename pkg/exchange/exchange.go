package exchange

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
)

// Strategy names accepted by New.
const (
	StrategySync  = "sync"
	StrategyAsync = "async"
)

// Option configures an exchange strategy.
type Option func(*base)

// WithLogger sets the logger used to report failed exchanges.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type base struct {
	t      ports.Transport
	topo   domain.Topology
	logger *slog.Logger
}

func newBase(t ports.Transport, topo domain.Topology, opts []Option) base {
	b := base{
		t:      t,
		topo:   topo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// New returns the strategy registered under name.
func New(name string, t ports.Transport, topo domain.Topology, opts ...Option) (ports.Exchanger, error) {
	switch name {
	case StrategySync:
		return NewSync(t, topo, opts...), nil
	case StrategyAsync, "":
		return NewAsync(t, topo, opts...), nil
	}
	return nil, fmt.Errorf("%w: unknown exchange strategy %q", domain.ErrInvalidConfig, name)
}

// fail wraps err as an exchange failure and logs it with the offending rank.
func (b *base) fail(gen int, side string, peer int, err error) error {
	b.logger.Error("halo exchange failed",
		"rank", b.topo.Rank,
		"side", side,
		"peer", peer,
		"generation", gen,
		"error", err,
	)
	return fmt.Errorf("%w: rank %d %s side (peer %d) generation %d: %w", domain.ErrExchange, b.topo.Rank, side, peer, gen, err)
}

func checkSize(got []domain.Cell, want int) error {
	if len(got) != want {
		return fmt.Errorf("%w: got %d cells, want %d", domain.ErrPayloadSize, len(got), want)
	}
	return nil
}

// done is a Pending that has already completed.
type done struct {
	upper, lower []domain.Cell
	err          error
}

func (d done) Wait() ([]domain.Cell, []domain.Cell, error) {
	return d.upper, d.lower, d.err
}
