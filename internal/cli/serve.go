package cli

import (
	"context"
	"fmt"

	httpAdapter "github.com/aretw0/halo/pkg/adapters/http"
	"github.com/aretw0/halo/pkg/adapters/pgm"
	redisAdapter "github.com/aretw0/halo/pkg/adapters/redis"
	"github.com/aretw0/halo/pkg/observability"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions select the snapshots to serve.
type ServeOptions struct {
	Addr string
	// Dir serves PGM files. Without it the redis store of RunID is served.
	Dir   string
	RunID string
}

// Serve exposes stored snapshots over HTTP until ctx is canceled or a signal arrives.
func Serve(ctx context.Context, opts Options, sopts ServeOptions) error {
	cfg, logger, err := opts.setup(false)
	if err != nil {
		return err
	}

	var store ports.SnapshotStore
	switch {
	case sopts.Dir != "":
		store = pgm.New(sopts.Dir)
	case sopts.RunID != "":
		rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisOptions(cfg, sopts.RunID)...)
		defer rs.Close()
		store = rs
	default:
		return fmt.Errorf("nothing to serve, pass --dir or --run-id")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}
	handler := httpAdapter.NewHandler(store,
		httpAdapter.WithMetrics(metrics.Handler()),
		httpAdapter.WithLogger(logger),
	)

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	stop, errs, err := startServer(sopts.Addr, handler, logger)
	if err != nil {
		return err
	}
	printSystemMessage(opts.stdout(), "Serving snapshots on %s", sopts.Addr)

	select {
	case err, ok := <-errs:
		stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigCtx.Done():
		stop()
		printSystemMessage(opts.stdout(), "Server stopped gracefully")
		return nil
	}
}
