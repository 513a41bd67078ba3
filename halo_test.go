package halo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/halo"
	"github.com/aretw0/halo/pkg/adapters/memory"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/exchange"
	"github.com/aretw0/halo/pkg/grid"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func reference(size, iterations int, p domain.Pattern) []domain.Cell {
	g := grid.New(size, size)
	g.Init(p)
	for i := 0; i < iterations; i++ {
		g.Advance(nil, nil)
	}
	return g.Cells()
}

func TestSimulation_DecompositionInvariance(t *testing.T) {
	defer goleak.VerifyNone(t)

	const size, iterations = 12, 9
	for _, pattern := range []domain.Pattern{domain.PatternLine, domain.PatternTShape, domain.PatternCross} {
		want := reference(size, iterations, pattern)

		serial, err := halo.New(size, iterations, pattern, halo.WithSerial())
		require.NoError(t, err)
		rep, err := serial.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, rep.Final, "%s serial", pattern)

		for _, workers := range []int{1, 2, 5, 12} {
			for _, strategy := range []string{exchange.StrategySync, exchange.StrategyAsync} {
				sim, err := halo.New(size, iterations, pattern,
					halo.WithWorkers(workers),
					halo.WithStrategy(strategy),
					halo.WithGridOptions(grid.WithStrategy(grid.Parallel(2))),
				)
				require.NoError(t, err)

				rep, err := sim.Run(context.Background())
				require.NoError(t, err)
				assert.Equal(t, want, rep.Final, "%s workers=%d %s", pattern, workers, strategy)
				assert.Equal(t, workers, rep.Workers)
			}
		}
	}
}

func TestSimulation_Snapshots(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.NewSnapshotStore()
	var events int
	sim, err := halo.New(10, 3, domain.PatternCross,
		halo.WithWorkers(3),
		halo.WithSnapshots(store),
		halo.WithLifecycleHooks(domain.LifecycleHooks{
			OnSnapshot: func(context.Context, *domain.SnapshotEvent) { events++ },
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, 4, sim.Size())

	rep, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Snapshots)
	assert.Equal(t, 4, events)

	ctx := context.Background()
	for gen := 0; gen <= 3; gen++ {
		snap, err := store.Load(ctx, gen)
		require.NoError(t, err)
		assert.Equal(t, reference(10, gen, domain.PatternCross), snap.Cells)
		assert.Equal(t, []int{4, 7}, snap.Seams)
	}
}

func TestSimulation_SerialSnapshots(t *testing.T) {
	store := memory.NewSnapshotStore()
	sim, err := halo.New(5, 2, domain.PatternLine, halo.WithSerial(), halo.WithSnapshots(store), halo.WithWorkers(4))
	require.NoError(t, err)
	assert.Equal(t, 1, sim.Workers())
	assert.Equal(t, 1, sim.Size())

	rep, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Serial)

	gens, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, gens)

	_, err = sim.RunRank(context.Background(), memory.NewHub(1).Endpoint(0))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSimulation_RunRankAcrossEndpoints(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.NewSnapshotStore()
	sim, err := halo.New(8, 4, domain.PatternTShape, halo.WithWorkers(2), halo.WithSnapshots(store))
	require.NoError(t, err)

	hub := memory.NewHub(sim.Size())
	reports := make([]*halo.RankReport, sim.Size())
	var eg errgroup.Group
	for r := 0; r < sim.Size(); r++ {
		eg.Go(func() error {
			rep, err := sim.RunRank(context.Background(), hub.Endpoint(r))
			reports[r] = rep
			return err
		})
	}
	require.NoError(t, eg.Wait())

	assert.True(t, reports[0].Timed())
	assert.False(t, reports[1].Timed())
	assert.Nil(t, reports[2].Result, "aggregator holds no block")
	assert.Equal(t, domain.RowRange{Start: 4, Count: 4}, reports[1].Result.Range)

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reference(8, 4, domain.PatternTShape), latest.Cells)
}

func TestSimulation_RunRankSizeMismatch(t *testing.T) {
	sim, err := halo.New(8, 1, domain.PatternLine, halo.WithWorkers(2))
	require.NoError(t, err)

	_, err = sim.RunRank(context.Background(), memory.NewHub(3).Endpoint(0))
	assert.ErrorIs(t, err, domain.ErrInsufficientProcesses)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		size int
		iter int
		pat  domain.Pattern
		opts []halo.Option
		err  error
	}{
		{name: "empty board", size: 0, err: domain.ErrInvalidConfig},
		{name: "negative iterations", size: 4, iter: -1, err: domain.ErrInvalidConfig},
		{name: "unknown pattern", size: 4, pat: 7, err: domain.ErrUnknownPattern},
		{name: "no workers", size: 4, opts: []halo.Option{halo.WithWorkers(0)}, err: domain.ErrInsufficientProcesses},
		{name: "more workers than rows", size: 4, opts: []halo.Option{halo.WithWorkers(5)}, err: domain.ErrInvalidConfig},
		{name: "unknown strategy", size: 4, opts: []halo.Option{halo.WithStrategy("eager")}, err: domain.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := halo.New(tt.size, tt.iter, tt.pat, tt.opts...)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSimulation_FirstFailureCancelsSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("disk full")
	sink := ports.SinkFunc(func(_ context.Context, snap *domain.Snapshot) error {
		if snap.Generation == 2 {
			return boom
		}
		return nil
	})
	sim, err := halo.New(16, 50, domain.PatternCross, halo.WithWorkers(3), halo.WithSnapshots(sink))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = sim.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, domain.ErrAggregation)
}

func TestSimulation_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim, err := halo.New(8, 3, domain.PatternLine, halo.WithWorkers(2))
	require.NoError(t, err)
	_, err = sim.Run(ctx)
	require.Error(t, err)
	assert.True(t, halo.IsCanceled(err))
}
