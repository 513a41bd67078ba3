package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGeneration EventType = "generation"
	EventExchange   EventType = "exchange"
	EventSnapshot   EventType = "snapshot"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Rank      int       `json:"rank"`
}

// GenerationEvent is emitted by a worker after a generation has been swapped in.
type GenerationEvent struct {
	EventBase
	Generation int           `json:"generation"`
	Alive      int           `json:"alive"`
	Interior   time.Duration `json:"interior"`
	// Wait is the time spent blocked on the exchange after interior rows were done.
	Wait  time.Duration `json:"wait"`
	Edges time.Duration `json:"edges"`
}

// ExchangeEvent is emitted when a halo exchange fails or completes.
type ExchangeEvent struct {
	EventBase
	Generation int           `json:"generation"`
	Strategy   string        `json:"strategy"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// SnapshotEvent is emitted by the aggregator after a snapshot was persisted.
type SnapshotEvent struct {
	EventBase
	Generation int `json:"generation"`
	Alive      int `json:"alive"`
}

// LifecycleHooks defines callbacks for run observability.
type LifecycleHooks struct {
	OnGeneration func(context.Context, *GenerationEvent)
	OnExchange   func(context.Context, *ExchangeEvent)
	OnSnapshot   func(context.Context, *SnapshotEvent)
}

// Merge returns hooks that call h first and then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnGeneration: chain(h.OnGeneration, other.OnGeneration),
		OnExchange:   chain(h.OnExchange, other.OnExchange),
		OnSnapshot:   chain(h.OnSnapshot, other.OnSnapshot),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
