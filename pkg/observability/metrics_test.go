package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	for gen := 1; gen <= 3; gen++ {
		hooks.OnGeneration(ctx, &domain.GenerationEvent{
			EventBase:  domain.EventBase{Rank: 1},
			Generation: gen,
			Alive:      10 + gen,
			Interior:   time.Millisecond,
		})
	}
	hooks.OnExchange(ctx, &domain.ExchangeEvent{Strategy: "async", Duration: time.Microsecond})
	hooks.OnExchange(ctx, &domain.ExchangeEvent{Strategy: "async", Err: errors.New("boom")})
	hooks.OnSnapshot(ctx, &domain.SnapshotEvent{Generation: 0})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Generations.WithLabelValues("1")))
	assert.Equal(t, 13.0, testutil.ToFloat64(m.Alive.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exchanges.WithLabelValues("async", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exchanges.WithLabelValues("async", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Snapshots))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	m.Hooks().OnSnapshot(context.Background(), &domain.SnapshotEvent{})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "halo_snapshots_total 1")
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hooks := observability.LogHooks(logger)
	ctx := context.Background()
	hooks.OnGeneration(ctx, &domain.GenerationEvent{EventBase: domain.EventBase{Rank: 2}, Generation: 5})
	hooks.OnExchange(ctx, &domain.ExchangeEvent{Generation: 5, Err: errors.New("link down")})

	out := buf.String()
	assert.Contains(t, out, "msg=generation rank=2 generation=5")
	assert.Contains(t, out, "level=ERROR msg=exchange")
	assert.Contains(t, out, `error="link down"`)
}
