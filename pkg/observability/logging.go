package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/halo/pkg/domain"
)

func rankLabel(rank int) string {
	return strconv.Itoa(rank)
}

// LogHooks writes one debug record per event. Failed exchanges are logged at error level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGeneration: func(ctx context.Context, e *domain.GenerationEvent) {
			logger.DebugContext(ctx, "generation",
				"rank", e.Rank,
				"generation", e.Generation,
				"alive", e.Alive,
				"interior", e.Interior,
				"wait", e.Wait,
				"edges", e.Edges,
			)
		},
		OnExchange: func(ctx context.Context, e *domain.ExchangeEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "exchange",
					"rank", e.Rank,
					"generation", e.Generation,
					"strategy", e.Strategy,
					"error", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "exchange",
				"rank", e.Rank,
				"generation", e.Generation,
				"strategy", e.Strategy,
				"duration", e.Duration,
			)
		},
		OnSnapshot: func(ctx context.Context, e *domain.SnapshotEvent) {
			logger.DebugContext(ctx, "snapshot",
				"generation", e.Generation,
				"alive", e.Alive,
			)
		},
	}
}
