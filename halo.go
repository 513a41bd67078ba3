package halo

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/halo/pkg/decomp"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/exchange"
	"github.com/aretw0/halo/pkg/grid"
	"github.com/aretw0/halo/pkg/ports"
)

// Simulation is the high-level entry point of the library.
// It holds the initial grid and the layout of a run and executes it either
// in-process (Run) or one rank at a time over an external transport (RunRank).
type Simulation struct {
	size       int
	iterations int
	pattern    domain.Pattern
	workers    int
	strategy   string
	serial     bool
	gridOpts   []grid.Option
	sink       ports.SnapshotSink
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	ranges  []domain.RowRange
	initial []domain.Cell
}

// Option defines a functional option for configuring the Simulation.
type Option func(*Simulation)

// WithWorkers sets the number of ranks computing blocks (default 1).
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		s.workers = n
	}
}

// WithStrategy selects the halo exchange strategy by name (default async).
func WithStrategy(name string) Option {
	return func(s *Simulation) {
		s.strategy = name
	}
}

// WithGridOptions forwards options to every Grid, e.g. grid.WithStrategy(grid.Parallel(4)).
func WithGridOptions(opts ...grid.Option) Option {
	return func(s *Simulation) {
		s.gridOpts = append(s.gridOpts, opts...)
	}
}

// WithSnapshots reserves an aggregator rank that saves every generation to sink.
func WithSnapshots(sink ports.SnapshotSink) Option {
	return func(s *Simulation) {
		s.sink = sink
	}
}

// WithSerial runs the whole grid on a single Grid without any transport.
func WithSerial() Option {
	return func(s *Simulation) {
		s.serial = true
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulation) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// New validates the layout and paints the initial grid.
func New(size, iterations int, pattern domain.Pattern, opts ...Option) (*Simulation, error) {
	s := &Simulation{
		size:       size,
		iterations: iterations,
		pattern:    pattern,
		workers:    1,
		strategy:   exchange.StrategyAsync,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.serial {
		s.workers = 1
	}

	switch {
	case size <= 0:
		return nil, fmt.Errorf("%w: board size must be positive, got %d", domain.ErrInvalidConfig, size)
	case iterations < 0:
		return nil, fmt.Errorf("%w: iterations must not be negative, got %d", domain.ErrInvalidConfig, iterations)
	case !pattern.Valid():
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownPattern, int(pattern))
	case s.workers < 1:
		return nil, fmt.Errorf("%w: at least one worker is needed, got %d", domain.ErrInsufficientProcesses, s.workers)
	case size < s.workers:
		return nil, fmt.Errorf("%w: board size %d is smaller than the %d workers", domain.ErrInvalidConfig, size, s.workers)
	case s.strategy != exchange.StrategySync && s.strategy != exchange.StrategyAsync:
		return nil, fmt.Errorf("%w: unknown exchange strategy %q", domain.ErrInvalidConfig, s.strategy)
	}

	g := grid.New(size, size)
	g.Init(pattern)
	s.initial = g.Cells()
	s.ranges = decomp.Plan(size, s.workers)
	return s, nil
}

// Workers is the number of ranks computing blocks.
func (s *Simulation) Workers() int { return s.workers }

// Size is the number of ranks a transport must connect, aggregator included.
func (s *Simulation) Size() int {
	return s.topology(0).Size()
}

// Ranges returns the row block of every worker.
func (s *Simulation) Ranges() []domain.RowRange { return s.ranges }

// Initial returns a copy of the generation 0 grid.
func (s *Simulation) Initial() []domain.Cell {
	return append([]domain.Cell(nil), s.initial...)
}

func (s *Simulation) topology(rank int) domain.Topology {
	return domain.NewTopology(rank, s.workers, s.sink != nil && !s.serial)
}
