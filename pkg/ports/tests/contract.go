package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TransportFactory returns connected endpoints for ranks 0..size-1.
type TransportFactory func(t *testing.T, size int) []ports.Transport

// TransportContractTest is a reusable test suite that verifies if an adapter complies with ports.Transport.
func TransportContractTest(t *testing.T, factory TransportFactory) {
	t.Helper()

	row := func(cells ...domain.Cell) []domain.Cell { return cells }

	t.Run("Identity", func(t *testing.T) {
		eps := factory(t, 3)
		for i, ep := range eps {
			assert.Equal(t, i, ep.Rank())
			assert.Equal(t, 3, ep.Size())
		}
	})

	t.Run("Send_Then_Recv", func(t *testing.T) {
		eps := factory(t, 2)
		ctx := context.Background()

		require.NoError(t, eps[0].Send(ctx, 1, domain.HaloTag(1), row(1, 0, 1)))
		got, err := eps[1].Recv(ctx, 0, domain.HaloTag(1))
		require.NoError(t, err)
		assert.Equal(t, row(1, 0, 1), got)
	})

	t.Run("Recv_Before_Send", func(t *testing.T) {
		eps := factory(t, 2)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan []domain.Cell, 1)
		go func() {
			got, err := eps[1].Recv(ctx, 0, domain.BlockTag(3))
			if err != nil {
				done <- nil
				return
			}
			done <- got
		}()

		time.Sleep(20 * time.Millisecond)
		require.NoError(t, eps[0].Send(ctx, 1, domain.BlockTag(3), row(0, 1)))
		assert.Equal(t, row(0, 1), <-done)
	})

	t.Run("Tags_Are_Matched", func(t *testing.T) {
		eps := factory(t, 2)
		ctx := context.Background()

		require.NoError(t, eps[0].Send(ctx, 1, domain.HaloTag(2), row(0, 0, 1)))
		require.NoError(t, eps[0].Send(ctx, 1, domain.HaloTag(1), row(1, 0, 0)))
		require.NoError(t, eps[0].Send(ctx, 1, domain.BlockTag(1), row(1, 1, 1)))

		got, err := eps[1].Recv(ctx, 0, domain.HaloTag(1))
		require.NoError(t, err)
		assert.Equal(t, row(1, 0, 0), got)

		got, err = eps[1].Recv(ctx, 0, domain.BlockTag(1))
		require.NoError(t, err)
		assert.Equal(t, row(1, 1, 1), got)

		got, err = eps[1].Recv(ctx, 0, domain.HaloTag(2))
		require.NoError(t, err)
		assert.Equal(t, row(0, 0, 1), got)
	})

	t.Run("Senders_Are_Matched", func(t *testing.T) {
		eps := factory(t, 3)
		ctx := context.Background()

		require.NoError(t, eps[2].Send(ctx, 1, domain.HaloTag(1), row(0, 1)))
		require.NoError(t, eps[0].Send(ctx, 1, domain.HaloTag(1), row(1, 0)))

		fromZero, err := eps[1].Recv(ctx, 0, domain.HaloTag(1))
		require.NoError(t, err)
		fromTwo, err := eps[1].Recv(ctx, 2, domain.HaloTag(1))
		require.NoError(t, err)

		assert.Equal(t, row(1, 0), fromZero)
		assert.Equal(t, row(0, 1), fromTwo)
	})

	t.Run("Send_Copies_Payload", func(t *testing.T) {
		eps := factory(t, 2)
		ctx := context.Background()

		payload := row(1, 1, 1)
		require.NoError(t, eps[0].Send(ctx, 1, domain.HaloTag(1), payload))
		payload[0] = domain.Dead

		got, err := eps[1].Recv(ctx, 0, domain.HaloTag(1))
		require.NoError(t, err)
		assert.Equal(t, row(1, 1, 1), got)
	})

	t.Run("Recv_Honors_Context", func(t *testing.T) {
		eps := factory(t, 2)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := eps[1].Recv(ctx, 0, domain.HaloTag(42))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Closed_Endpoint", func(t *testing.T) {
		eps := factory(t, 2)
		require.NoError(t, eps[0].Close())

		err := eps[0].Send(context.Background(), 1, domain.HaloTag(1), row(1))
		assert.ErrorIs(t, err, domain.ErrTransportClosed)
	})
}
