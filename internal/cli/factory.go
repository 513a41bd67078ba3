package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/halo"
	"github.com/aretw0/halo/internal/config"
	"github.com/aretw0/halo/internal/presentation/tui"
	httpAdapter "github.com/aretw0/halo/pkg/adapters/http"
	"github.com/aretw0/halo/pkg/adapters/memory"
	"github.com/aretw0/halo/pkg/adapters/pgm"
	"github.com/aretw0/halo/pkg/grid"
	"github.com/aretw0/halo/pkg/observability"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 5 * time.Second

// stack is a Simulation together with everything wired around it.
type stack struct {
	sim     *halo.Simulation
	metrics *observability.Metrics
	// store and streams are set when the run is served over HTTP.
	store   ports.SnapshotStore
	streams *httpAdapter.StreamManager
}

// createStack builds the simulation described by cfg. Extra sinks receive every
// snapshot next to the configured ones.
func createStack(cfg config.Config, logger *slog.Logger, stdout io.Writer, extra ...ports.SnapshotSink) (*stack, error) {
	kernel, ok := grid.StrategyByName(cfg.Kernel, cfg.Threads)
	if !ok {
		return nil, fmt.Errorf("unknown kernel %q", cfg.Kernel)
	}

	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	st := &stack{metrics: metrics}
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))

	sinks := ports.MultiSink(extra)
	if cfg.OutputDirectory != "" {
		sinks = append(sinks, pgm.New(cfg.OutputDirectory))
	}
	if cfg.PrintBoards {
		sinks = append(sinks, tui.NewBoardSink(stdout))
	}
	if cfg.Listen != "" {
		store := memory.NewSnapshotStore()
		st.store = store
		st.streams = httpAdapter.NewStreamManager()
		hooks = hooks.Merge(st.streams.Hooks())
		sinks = append(sinks, store)
	}

	opts := []halo.Option{
		halo.WithWorkers(cfg.Workers()),
		halo.WithStrategy(cfg.Strategy),
		halo.WithGridOptions(grid.WithStrategy(kernel)),
		halo.WithLifecycleHooks(hooks),
		halo.WithLogger(logger),
	}
	if cfg.Serial {
		opts = append(opts, halo.WithSerial())
	}
	if cfg.Verbose() {
		opts = append(opts, halo.WithSnapshots(sinks))
	} else if len(extra) > 0 || cfg.Listen != "" {
		logger.Debug("snapshots disabled, sinks left idle")
	}

	st.sim, err = halo.New(cfg.BoardSize, cfg.Iterations, cfg.Pattern, opts...)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// handler is the HTTP API over the stack's snapshot store.
func (st *stack) handler(logger *slog.Logger) http.Handler {
	return httpAdapter.NewHandler(st.store,
		httpAdapter.WithStreams(st.streams),
		httpAdapter.WithMetrics(st.metrics.Handler()),
		httpAdapter.WithLogger(logger),
	)
}

func (st *stack) close() {
	if st.streams != nil {
		st.streams.Close()
	}
}

// startServer listens on addr and serves h until the returned stop is called.
// Listening errors are returned immediately, later serving errors go to errs.
func startServer(addr string, h http.Handler, logger *slog.Logger) (stop func(), errs <-chan error, err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	ch := make(chan error, 1)

	go func() {
		logger.Info("serving", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ch <- err
		}
		close(ch)
	}()

	stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			_ = srv.Close()
		}
	}
	return stop, ch, nil
}
