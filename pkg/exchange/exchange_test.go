package exchange_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/halo/pkg/adapters/memory"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/exchange"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

type brokenTransport struct {
	ports.Transport
	err error
}

func (b brokenTransport) Recv(ctx context.Context, from int, tag domain.Tag) ([]domain.Cell, error) {
	return nil, b.err
}

type shortTransport struct {
	ports.Transport
}

func (s shortTransport) Recv(ctx context.Context, from int, tag domain.Tag) ([]domain.Cell, error) {
	row, err := s.Transport.Recv(ctx, from, tag)
	if err != nil {
		return nil, err
	}
	return row[:len(row)-1], nil
}

type ghosts struct {
	upper, lower []domain.Cell
}

// exchangeAll runs one generation of exchange on every rank of a chain and returns
// the ghost rows each rank received.
func exchangeAll(t *testing.T, strategy string, tops, bottoms [][]domain.Cell) []ghosts {
	t.Helper()
	workers := len(tops)
	eps := memory.NewHub(workers).Endpoints()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := make([]ghosts, workers)
	var eg errgroup.Group
	for r := 0; r < workers; r++ {
		ex, err := exchange.New(strategy, eps[r], domain.NewTopology(r, workers, false))
		require.NoError(t, err)
		eg.Go(func() error {
			up, lo, err := ports.Exchange(ctx, ex, 1, tops[r], bottoms[r])
			out[r] = ghosts{upper: up, lower: lo}
			return err
		})
	}
	require.NoError(t, eg.Wait())
	return out
}

func TestStrategies_DeliverNeighbourRows(t *testing.T) {
	defer goleak.VerifyNone(t)

	tops := [][]domain.Cell{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	bottoms := [][]domain.Cell{{1, 1, 0}, {0, 1, 1}, {1, 0, 1}}

	for _, strategy := range []string{exchange.StrategySync, exchange.StrategyAsync} {
		t.Run(strategy, func(t *testing.T) {
			got := exchangeAll(t, strategy, tops, bottoms)

			assert.Nil(t, got[0].upper, "rank 0 has no upper neighbour")
			assert.Equal(t, tops[1], got[0].lower)

			assert.Equal(t, bottoms[0], got[1].upper)
			assert.Equal(t, tops[2], got[1].lower)

			assert.Equal(t, bottoms[1], got[2].upper)
			assert.Nil(t, got[2].lower, "last worker has no lower neighbour")
		})
	}
}

func TestAsync_OverlapsWithCaller(t *testing.T) {
	defer goleak.VerifyNone(t)

	eps := memory.NewHub(2).Endpoints()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ex := exchange.NewAsync(eps[0], domain.NewTopology(0, 2, false))
	pending := ex.Start(ctx, 1, []domain.Cell{1, 1}, []domain.Cell{0, 1})

	// Start returned although rank 1 has not sent anything yet.
	peer := exchange.NewAsync(eps[1], domain.NewTopology(1, 2, false))
	up, lo, err := ports.Exchange(ctx, peer, 1, []domain.Cell{1, 0}, []domain.Cell{0, 0})
	require.NoError(t, err)
	assert.Equal(t, []domain.Cell{0, 1}, up)
	assert.Nil(t, lo)

	up, lo, err = pending.Wait()
	require.NoError(t, err)
	assert.Nil(t, up)
	assert.Equal(t, []domain.Cell{1, 0}, lo)
}

func TestStrategies_FailuresAreFatal(t *testing.T) {
	boom := errors.New("link down")

	for _, strategy := range []string{exchange.StrategySync, exchange.StrategyAsync} {
		t.Run(strategy, func(t *testing.T) {
			eps := memory.NewHub(2).Endpoints()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			ex, err := exchange.New(strategy, brokenTransport{Transport: eps[1], err: boom}, domain.NewTopology(1, 2, false))
			require.NoError(t, err)

			up, lo, err := ports.Exchange(ctx, ex, 3, []domain.Cell{1}, []domain.Cell{1})
			assert.ErrorIs(t, err, domain.ErrExchange)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), "rank 1")
			assert.Contains(t, err.Error(), "generation 3")
			assert.Nil(t, up)
			assert.Nil(t, lo)
		})
	}
}

func TestStrategies_RejectShortRows(t *testing.T) {
	for _, strategy := range []string{exchange.StrategySync, exchange.StrategyAsync} {
		t.Run(strategy, func(t *testing.T) {
			eps := memory.NewHub(2).Endpoints()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			ex, err := exchange.New(strategy, shortTransport{Transport: eps[1]}, domain.NewTopology(1, 2, false))
			require.NoError(t, err)
			peer, err := exchange.New(strategy, eps[0], domain.NewTopology(0, 2, false))
			require.NoError(t, err)

			var eg errgroup.Group
			eg.Go(func() error {
				_, _, err := ports.Exchange(ctx, peer, 1, []domain.Cell{1, 1}, []domain.Cell{1, 1})
				return err
			})
			_, _, err = ports.Exchange(ctx, ex, 1, []domain.Cell{0, 0}, []domain.Cell{0, 0})
			assert.ErrorIs(t, err, domain.ErrPayloadSize)

			// The peer may or may not have received our row before we gave up.
			cancel()
			_ = eg.Wait()
		})
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := exchange.New("carrier-pigeon", nil, domain.NewTopology(0, 2, false))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
