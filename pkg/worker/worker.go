// Package worker drives one rank of the simulation through its generations.
package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/halo/pkg/decomp"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/grid"
	"github.com/aretw0/halo/pkg/ports"
)

// State is the lifecycle phase of a worker.
type State int32

const (
	StateInit State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateDone:
		return "DONE"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Result is what a worker holds after its last generation.
type Result struct {
	Rank        int             `json:"rank"`
	Range       domain.RowRange `json:"range"`
	Width       int             `json:"width"`
	Cells       []domain.Cell   `json:"cells"`
	Generations int             `json:"generations"`
	Elapsed     time.Duration   `json:"elapsed"`
}

// Worker owns one block of the grid and advances it in lockstep with its neighbours.
type Worker struct {
	topo     domain.Topology
	rows     domain.RowRange
	grid     *grid.Grid
	ex       ports.Exchanger
	sink     ports.Transport
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	gridOpts []grid.Option
	state    atomic.Int32
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Worker) {
		w.hooks = hooks
	}
}

// WithGridOptions forwards options to the worker's Grid, e.g. the update strategy.
func WithGridOptions(opts ...grid.Option) Option {
	return func(w *Worker) {
		w.gridOpts = append(w.gridOpts, opts...)
	}
}

// WithAggregation forwards the block to topo.Aggregator through t after every generation.
func WithAggregation(t ports.Transport) Option {
	return func(w *Worker) {
		w.sink = t
	}
}

// New performs the INIT phase: it takes the rank's row range from ranges and copies
// that slice of initial, the full grid painted once before decomposition.
func New(topo domain.Topology, ranges []domain.RowRange, initial []domain.Cell, width int, ex ports.Exchanger, opts ...Option) (*Worker, error) {
	if topo.Rank < 0 || topo.Rank >= len(ranges) || topo.IsAggregator() {
		return nil, fmt.Errorf("%w: rank %d is not a simulation worker", domain.ErrInvalidConfig, topo.Rank)
	}
	rows := ranges[topo.Rank]
	if rows.Count == 0 {
		return nil, fmt.Errorf("%w: rank %d has no rows", domain.ErrInvalidConfig, topo.Rank)
	}

	w := &Worker{
		topo:   topo,
		rows:   rows,
		ex:     ex,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sink != nil && !topo.Aggregating() {
		return nil, fmt.Errorf("%w: aggregation requested without an aggregator rank", domain.ErrInvalidConfig)
	}

	w.logger = w.logger.With("rank", topo.Rank)
	w.grid = grid.FromCells(width, decomp.Slice(initial, width, rows), w.gridOpts...)
	w.state.Store(int32(StateInit))
	return w, nil
}

// State returns the current lifecycle phase.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Grid exposes the worker's block. It must not be mutated while Run is executing.
func (w *Worker) Grid() *grid.Grid {
	return w.grid
}

// Range returns the rows owned by the worker.
func (w *Worker) Range() domain.RowRange {
	return w.rows
}

// Run advances the block iterations times. Each generation exchanges the current
// boundary rows, computes the interior while the exchange may still be in flight,
// waits for the ghost rows, computes the two edge rows and swaps. Generations are
// strictly sequential; the run stops at the first error.
func (w *Worker) Run(ctx context.Context, iterations int) (*Result, error) {
	if !w.state.CompareAndSwap(int32(StateInit), int32(StateRunning)) {
		return nil, fmt.Errorf("worker rank %d: Run called in state %s", w.topo.Rank, w.State())
	}
	defer w.state.Store(int32(StateDone))

	w.logger.Debug("worker running",
		"start_row", w.rows.Start,
		"rows", w.rows.Count,
		"iterations", iterations,
		"strategy", w.ex.Name(),
	)

	started := time.Now()
	for gen := 1; gen <= iterations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("worker rank %d stopped before generation %d: %w", w.topo.Rank, gen, err)
		}
		if err := w.step(ctx, gen); err != nil {
			return nil, err
		}
	}

	w.logger.Debug("worker done", "elapsed", time.Since(started))
	return &Result{
		Rank:        w.topo.Rank,
		Range:       w.rows,
		Width:       w.grid.Width(),
		Cells:       w.grid.Cells(),
		Generations: iterations,
		Elapsed:     time.Since(started),
	}, nil
}

func (w *Worker) step(ctx context.Context, gen int) error {
	t0 := time.Now()
	pending := w.ex.Start(ctx, gen, w.grid.Top(), w.grid.Bottom())

	w.grid.AdvanceInterior()
	t1 := time.Now()

	upper, lower, err := pending.Wait()
	t2 := time.Now()
	if w.hooks.OnExchange != nil {
		w.hooks.OnExchange(ctx, &domain.ExchangeEvent{
			EventBase:  domain.EventBase{Timestamp: t2, Type: domain.EventExchange, Rank: w.topo.Rank},
			Generation: gen,
			Strategy:   w.ex.Name(),
			Duration:   t2.Sub(t0),
			Err:        err,
		})
	}
	if err != nil {
		return fmt.Errorf("worker rank %d: %w", w.topo.Rank, err)
	}

	w.grid.AdvanceEdges(upper, lower)
	t3 := time.Now()

	if w.sink != nil {
		if err := w.sink.Send(ctx, w.topo.Aggregator, domain.BlockTag(gen), w.grid.View()); err != nil {
			w.logger.Error("sending block to aggregator failed", "generation", gen, "error", err)
			return fmt.Errorf("%w: rank %d generation %d: %w", domain.ErrAggregation, w.topo.Rank, gen, err)
		}
	}

	if w.hooks.OnGeneration != nil {
		w.hooks.OnGeneration(ctx, &domain.GenerationEvent{
			EventBase:  domain.EventBase{Timestamp: t3, Type: domain.EventGeneration, Rank: w.topo.Rank},
			Generation: gen,
			Alive:      w.grid.Alive(),
			Interior:   t1.Sub(t0),
			Wait:       t2.Sub(t1),
			Edges:      t3.Sub(t2),
		})
	}
	return nil
}
