package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of a run.
type Metrics struct {
	Generations      *prometheus.CounterVec
	Alive            *prometheus.GaugeVec
	PhaseDuration    *prometheus.HistogramVec
	Exchanges        *prometheus.CounterVec
	ExchangeDuration *prometheus.HistogramVec
	Snapshots        prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// If reg is also a Gatherer, Handler serves it.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "halo_generations_total",
				Help: "Generations completed per rank",
			},
			[]string{"rank"},
		),
		Alive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "halo_alive_cells",
				Help: "Live cells in the block of a rank after its last generation",
			},
			[]string{"rank"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "halo_phase_duration_seconds",
				Help:    "Duration of the phases of a generation",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"phase"},
		),
		Exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "halo_exchanges_total",
				Help: "Halo exchanges by strategy and result",
			},
			[]string{"strategy", "result"},
		),
		ExchangeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "halo_exchange_duration_seconds",
				Help:    "Time between starting an exchange and holding both ghost rows",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"strategy"},
		),
		Snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "halo_snapshots_total",
			Help: "Snapshots emitted by the aggregator",
		}),
	}

	for _, c := range []prometheus.Collector{m.Generations, m.Alive, m.PhaseDuration, m.Exchanges, m.ExchangeDuration, m.Snapshots} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m, nil
}

// Hooks records every lifecycle event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGeneration: func(_ context.Context, e *domain.GenerationEvent) {
			rank := rankLabel(e.Rank)
			m.Generations.WithLabelValues(rank).Inc()
			m.Alive.WithLabelValues(rank).Set(float64(e.Alive))
			m.PhaseDuration.WithLabelValues("interior").Observe(e.Interior.Seconds())
			m.PhaseDuration.WithLabelValues("wait").Observe(e.Wait.Seconds())
			m.PhaseDuration.WithLabelValues("edges").Observe(e.Edges.Seconds())
		},
		OnExchange: func(_ context.Context, e *domain.ExchangeEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Exchanges.WithLabelValues(e.Strategy, result).Inc()
			m.ExchangeDuration.WithLabelValues(e.Strategy).Observe(e.Duration.Seconds())
		},
		OnSnapshot: func(_ context.Context, e *domain.SnapshotEvent) {
			m.Snapshots.Inc()
		},
	}
}

// Handler serves the registry the metrics were registered with, or the default
// gatherer when that registry cannot be gathered.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
