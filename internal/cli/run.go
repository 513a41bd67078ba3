package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/halo"
	"github.com/aretw0/halo/internal/config"
	"github.com/aretw0/halo/internal/presentation/tui"
	redisAdapter "github.com/aretw0/halo/pkg/adapters/redis"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RunLocal executes every rank in this process and prints the elapsed time.
// With the redis transport each rank still gets its own connection and key space.
func RunLocal(ctx context.Context, opts Options) error {
	cfg, logger, err := opts.setup(true)
	if err != nil {
		return err
	}
	out := opts.stdout()
	if isTerminal(out) {
		tui.PrintBanner(out)
	}

	st, err := createStack(cfg, logger, out)
	if err != nil {
		return err
	}
	defer st.close()

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	if cfg.Listen != "" {
		stop, errs, err := startServer(cfg.Listen, st.handler(logger), logger)
		if err != nil {
			return err
		}
		defer stop()
		go func() {
			if err, ok := <-errs; ok {
				logger.Error("server failed", "err", err)
				sigCtx.Cancel()
			}
		}()
	}

	logger.Info("run started",
		"board_size", cfg.BoardSize,
		"iterations", cfg.Iterations,
		"pattern", cfg.Pattern.String(),
		"ranks", st.sim.Size(),
		"transport", cfg.Transport,
	)

	if cfg.Transport == config.TransportRedis && !cfg.Serial {
		rep, err := runOverRedis(sigCtx, st.sim, cfg, logger)
		if err != nil {
			return handleExecutionError(out, err, sigCtx.Signal())
		}
		printElapsed(out, rep.Duration)
		return nil
	}

	rep, err := st.sim.Run(sigCtx)
	if err != nil {
		return handleExecutionError(out, err, sigCtx.Signal())
	}
	printElapsed(out, rep.Duration)
	printReport(out, rep, logger)
	return nil
}

// runOverRedis runs each rank as a goroutine with its own redis transport and
// returns what rank 0 measured.
func runOverRedis(ctx context.Context, sim *halo.Simulation, cfg config.Config, logger *slog.Logger) (*halo.RankReport, error) {
	client := redisAdapter.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer client.Close()

	settings := redisOptions(cfg, uuid.NewString())
	var timed *halo.RankReport
	eg, ectx := errgroup.WithContext(ctx)
	for rank := 0; rank < sim.Size(); rank++ {
		t := redisAdapter.NewTransport(client, rank, sim.Size(), settings...)
		eg.Go(func() error {
			defer t.Close()
			rep, err := sim.RunRank(ectx, t)
			if err != nil {
				return fmt.Errorf("rank %d: %w", rank, err)
			}
			if rep.Timed() {
				timed = rep
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("redis run finished", "ranks", sim.Size())
	return timed, nil
}

func redisOptions(cfg config.Config, runID string) []redisAdapter.Option {
	return []redisAdapter.Option{
		redisAdapter.WithPrefix(cfg.Redis.Prefix),
		redisAdapter.WithRunID(runID),
		redisAdapter.WithTTL(cfg.Redis.TTL),
	}
}

// printReport renders a summary when stdout is an interactive terminal.
func printReport(w io.Writer, rep *halo.Report, logger *slog.Logger) {
	if !isTerminal(w) {
		return
	}
	out, err := tui.NewRenderer()(tui.ReportMarkdown(rep))
	if err != nil {
		logger.Debug("report rendering failed", "err", err)
		return
	}
	fmt.Fprint(w, out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
