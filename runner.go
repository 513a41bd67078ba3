package halo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/halo/pkg/adapters/memory"
	"github.com/aretw0/halo/pkg/aggregator"
	"github.com/aretw0/halo/pkg/collective"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/exchange"
	"github.com/aretw0/halo/pkg/grid"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/aretw0/halo/pkg/worker"
	"golang.org/x/sync/errgroup"
)

// Report summarizes a finished run.
type Report struct {
	BoardSize  int           `json:"board_size" yaml:"board_size"`
	Iterations int           `json:"iterations" yaml:"iterations"`
	Workers    int           `json:"workers" yaml:"workers"`
	Strategy   string        `json:"strategy" yaml:"strategy"`
	Serial     bool          `json:"serial" yaml:"serial"`
	Snapshots  bool          `json:"snapshots" yaml:"snapshots"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Alive      int           `json:"alive" yaml:"alive"`
	// Final is the last generation, assembled from every block.
	Final []domain.Cell `json:"-" yaml:"-"`
}

// RankReport is what one rank knows when it finishes.
type RankReport struct {
	Rank int `json:"rank"`
	// Duration is the wall-clock time between the start and end barriers.
	Duration time.Duration `json:"duration"`
	// Result is nil on the aggregator rank.
	Result *worker.Result `json:"result,omitempty"`
}

// Timed reports whether this rank measures the run, as only rank 0 does.
func (r *RankReport) Timed() bool {
	return r.Rank == 0
}

// Run executes every rank in this process, each one a goroutine on an in-memory hub.
// The first failing rank cancels the others.
func (s *Simulation) Run(ctx context.Context) (*Report, error) {
	if s.serial {
		return s.runSerial(ctx)
	}

	hub := memory.NewHub(s.Size())
	reports := make([]*RankReport, s.Size())

	eg, ectx := errgroup.WithContext(ctx)
	for rank := 0; rank < s.Size(); rank++ {
		ep := hub.Endpoint(rank)
		eg.Go(func() error {
			defer ep.Close()
			rep, err := s.RunRank(ectx, ep)
			reports[rank] = rep
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	final := make([]domain.Cell, 0, s.size*s.size)
	for _, rep := range reports[:s.workers] {
		final = append(final, rep.Result.Cells...)
	}
	return s.report(reports[0].Duration, final), nil
}

// RunRank executes the rank of t, a worker or the aggregator, between two barriers
// spanning every rank. t.Size() must equal Size().
func (s *Simulation) RunRank(ctx context.Context, t ports.Transport) (*RankReport, error) {
	if s.serial {
		return nil, fmt.Errorf("%w: a serial run has no ranks", domain.ErrInvalidConfig)
	}
	if t.Size() != s.Size() {
		return nil, fmt.Errorf("%w: transport connects %d ranks, the run needs %d", domain.ErrInsufficientProcesses, t.Size(), s.Size())
	}

	topo := s.topology(t.Rank())
	logger := s.logger.With("rank", topo.Rank)

	if err := collective.Barrier(ctx, t, 0); err != nil {
		return nil, fmt.Errorf("start barrier: %w", err)
	}
	started := time.Now()
	rep := &RankReport{Rank: topo.Rank}

	if topo.IsAggregator() {
		agg := aggregator.New(t, s.ranges, s.size, s.sink,
			aggregator.WithLogger(s.logger),
			aggregator.WithHooks(s.hooks),
		)
		if err := agg.Run(ctx, s.initial, s.iterations); err != nil {
			return nil, err
		}
	} else {
		ex, err := exchange.New(s.strategy, t, topo, exchange.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		opts := []worker.Option{
			worker.WithLogger(s.logger),
			worker.WithHooks(s.hooks),
			worker.WithGridOptions(s.gridOpts...),
		}
		if topo.Aggregating() {
			opts = append(opts, worker.WithAggregation(t))
		}
		w, err := worker.New(topo, s.ranges, s.initial, s.size, ex, opts...)
		if err != nil {
			return nil, err
		}
		if rep.Result, err = w.Run(ctx, s.iterations); err != nil {
			return nil, err
		}
	}

	if err := collective.Barrier(ctx, t, 1); err != nil {
		return nil, fmt.Errorf("end barrier: %w", err)
	}
	rep.Duration = time.Since(started)
	logger.Debug("rank finished", "duration", rep.Duration)
	return rep, nil
}

// runSerial advances the whole grid with absent ghost rows, like a single worker
// without neighbours, and saves snapshots directly.
func (s *Simulation) runSerial(ctx context.Context) (*Report, error) {
	g := grid.FromCells(s.size, s.Initial(), s.gridOpts...)
	save := func(gen int) error {
		if s.sink == nil {
			return nil
		}
		snap := &domain.Snapshot{Generation: gen, Width: s.size, Height: s.size, Cells: g.Cells()}
		if err := s.sink.Save(ctx, snap); err != nil {
			return fmt.Errorf("%w: saving generation %d: %w", domain.ErrAggregation, gen, err)
		}
		if s.hooks.OnSnapshot != nil {
			s.hooks.OnSnapshot(ctx, &domain.SnapshotEvent{
				EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventSnapshot},
				Generation: gen,
				Alive:      snap.Alive(),
			})
		}
		return nil
	}

	started := time.Now()
	if err := save(0); err != nil {
		return nil, err
	}
	for gen := 1; gen <= s.iterations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t0 := time.Now()
		g.Advance(nil, nil)
		if s.hooks.OnGeneration != nil {
			s.hooks.OnGeneration(ctx, &domain.GenerationEvent{
				EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventGeneration},
				Generation: gen,
				Alive:      g.Alive(),
				Interior:   time.Since(t0),
			})
		}
		if err := save(gen); err != nil {
			return nil, err
		}
	}
	return s.report(time.Since(started), g.Cells()), nil
}

func (s *Simulation) report(d time.Duration, final []domain.Cell) *Report {
	rep := &Report{
		BoardSize:  s.size,
		Iterations: s.iterations,
		Workers:    s.workers,
		Strategy:   s.strategy,
		Serial:     s.serial,
		Snapshots:  s.sink != nil,
		Duration:   d,
		Final:      final,
	}
	if s.serial {
		rep.Strategy = ""
	}
	for _, c := range final {
		if c == domain.Alive {
			rep.Alive++
		}
	}
	return rep
}

// IsCanceled reports whether err stems from the run being interrupted.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
