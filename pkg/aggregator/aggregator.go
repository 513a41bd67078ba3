// Package aggregator assembles the workers' blocks into full-grid snapshots.
package aggregator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/halo/pkg/decomp"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// Aggregator runs on the reserved rank after the last worker. It never takes part in
// the halo exchange.
type Aggregator struct {
	t      ports.Transport
	ranges []domain.RowRange
	seams  []int
	width  int
	height int
	sink   ports.SnapshotSink
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithHooks registers observability hooks. Only OnSnapshot is fired.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Aggregator) {
		a.hooks = hooks
	}
}

// New creates an aggregator receiving one block per entry of ranges through t.
func New(t ports.Transport, ranges []domain.RowRange, width int, sink ports.SnapshotSink, opts ...Option) *Aggregator {
	a := &Aggregator{
		t:      t,
		ranges: ranges,
		seams:  decomp.Seams(ranges),
		width:  width,
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, r := range ranges {
		a.height += r.Count
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("rank", t.Rank())
	return a
}

// Run emits generation 0 from initial, then collects and emits generations 1..iterations.
func (a *Aggregator) Run(ctx context.Context, initial []domain.Cell, iterations int) error {
	if len(initial) != a.width*a.height {
		return fmt.Errorf("%w: initial grid has %d cells, want %d", domain.ErrPayloadSize, len(initial), a.width*a.height)
	}
	cells := make([]domain.Cell, len(initial))
	copy(cells, initial)
	if err := a.emit(ctx, 0, cells); err != nil {
		return err
	}

	for gen := 1; gen <= iterations; gen++ {
		cells, err := a.collect(ctx, gen)
		if err != nil {
			a.logger.Error("collecting generation failed", "generation", gen, "error", err)
			return err
		}
		if err := a.emit(ctx, gen, cells); err != nil {
			return err
		}
	}
	return nil
}

func (a *Aggregator) collect(ctx context.Context, gen int) ([]domain.Cell, error) {
	cells := make([]domain.Cell, a.width*a.height)
	tag := domain.BlockTag(gen)

	eg, ectx := errgroup.WithContext(ctx)
	for rank, rows := range a.ranges {
		eg.Go(func() error {
			block, err := a.t.Recv(ectx, rank, tag)
			if err != nil {
				return fmt.Errorf("%w: block from rank %d generation %d: %w", domain.ErrAggregation, rank, gen, err)
			}
			if want := rows.Count * a.width; len(block) != want {
				return fmt.Errorf("%w: %w: block from rank %d generation %d has %d cells, want %d",
					domain.ErrAggregation, domain.ErrPayloadSize, rank, gen, len(block), want)
			}
			copy(cells[rows.Start*a.width:], block)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return cells, nil
}

func (a *Aggregator) emit(ctx context.Context, gen int, cells []domain.Cell) error {
	snap := &domain.Snapshot{
		Generation: gen,
		Width:      a.width,
		Height:     a.height,
		Cells:      cells,
		Seams:      a.seams,
	}
	if err := a.sink.Save(ctx, snap); err != nil {
		return fmt.Errorf("%w: saving generation %d: %w", domain.ErrAggregation, gen, err)
	}
	if a.hooks.OnSnapshot != nil {
		a.hooks.OnSnapshot(ctx, &domain.SnapshotEvent{
			EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventSnapshot, Rank: a.t.Rank()},
			Generation: gen,
			Alive:      snap.Alive(),
		})
	}
	a.logger.Debug("snapshot emitted", "generation", gen)
	return nil
}
