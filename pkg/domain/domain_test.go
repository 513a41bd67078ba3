package domain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Pattern
	}{
		{"LINE", domain.PatternLine},
		{"line", domain.PatternLine},
		{"0", domain.PatternLine},
		{"T_SHAPE", domain.PatternTShape},
		{"t-shape", domain.PatternTShape},
		{"1", domain.PatternTShape},
		{" cross ", domain.PatternCross},
		{"2", domain.PatternCross},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParsePattern(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "3", "-1", "glider"} {
		_, err := domain.ParsePattern(bad)
		assert.ErrorIs(t, err, domain.ErrUnknownPattern, bad)
	}
}

func TestPattern_Text(t *testing.T) {
	data, err := json.Marshal(map[string]domain.Pattern{"p": domain.PatternTShape})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"T_SHAPE"}`, string(data))

	var back map[string]domain.Pattern
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, domain.PatternTShape, back["p"])

	assert.False(t, domain.Pattern(7).Valid())
	assert.Equal(t, "Pattern(7)", domain.Pattern(7).String())
	_, err = domain.Pattern(7).MarshalText()
	assert.ErrorIs(t, err, domain.ErrUnknownPattern)
}

func TestTopology(t *testing.T) {
	t.Run("chain without aggregator", func(t *testing.T) {
		top := domain.NewTopology(0, 3, false)
		assert.Equal(t, domain.NoRank, top.Upper())
		assert.Equal(t, 1, top.Lower())
		assert.Equal(t, 3, top.Size())
		assert.False(t, top.Aggregating())

		mid := top.WithRank(1)
		assert.Equal(t, 0, mid.Upper())
		assert.Equal(t, 2, mid.Lower())

		last := top.WithRank(2)
		assert.Equal(t, 1, last.Upper())
		assert.Equal(t, domain.NoRank, last.Lower())
	})

	t.Run("aggregator sits outside the chain", func(t *testing.T) {
		top := domain.NewTopology(2, 2, true)
		assert.True(t, top.IsAggregator())
		assert.True(t, top.Aggregating())
		assert.Equal(t, 3, top.Size())
		assert.Equal(t, domain.NoRank, top.Upper())
		assert.Equal(t, domain.NoRank, top.Lower())

		w := top.WithRank(1)
		assert.False(t, w.IsAggregator())
		assert.Equal(t, domain.NoRank, w.Lower(), "the last worker has no lower neighbour")
	})

	t.Run("single worker", func(t *testing.T) {
		top := domain.NewTopology(0, 1, false)
		assert.Equal(t, domain.NoRank, top.Upper())
		assert.Equal(t, domain.NoRank, top.Lower())
	})
}

func TestSnapshot(t *testing.T) {
	snap := &domain.Snapshot{
		Width:  2,
		Height: 3,
		Cells:  []domain.Cell{1, 0, 0, 0, 1, 1},
		Seams:  []int{1, 2},
	}
	assert.Equal(t, []domain.Cell{1, 1}, snap.Row(2))
	assert.Equal(t, 3, snap.Alive())
	assert.False(t, snap.IsSeam(0))
	assert.True(t, snap.IsSeam(1))
	assert.True(t, snap.IsSeam(2))

	c := snap.Clone()
	c.Cells[0] = domain.Dead
	c.Seams[0] = 0
	assert.Equal(t, domain.Alive, snap.Cells[0])
	assert.Equal(t, 1, snap.Seams[0])
}

func TestRowRange_End(t *testing.T) {
	assert.Equal(t, 7, domain.RowRange{Start: 4, Count: 3}.End())
}

func TestTag(t *testing.T) {
	assert.Equal(t, "halo:3", domain.HaloTag(3).String())
	assert.NotEqual(t, domain.HaloTag(1), domain.BlockTag(1))
	assert.Equal(t, domain.KindBarrier, domain.BarrierTag(0).Kind)
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnSnapshot: func(context.Context, *domain.SnapshotEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnSnapshot:   func(context.Context, *domain.SnapshotEvent) { calls = append(calls, "b") },
		OnGeneration: func(context.Context, *domain.GenerationEvent) { calls = append(calls, "gen") },
	}

	m := a.Merge(b)
	m.OnSnapshot(context.Background(), &domain.SnapshotEvent{})
	m.OnGeneration(context.Background(), &domain.GenerationEvent{})
	assert.Nil(t, m.OnExchange)
	assert.Equal(t, []string{"a", "b", "gen"}, calls)

	empty := domain.LifecycleHooks{}.Merge(domain.LifecycleHooks{})
	assert.Nil(t, empty.OnSnapshot)
}
