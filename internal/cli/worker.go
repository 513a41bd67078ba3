package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/halo/internal/config"
	"github.com/aretw0/halo/internal/logging"
	redisAdapter "github.com/aretw0/halo/pkg/adapters/redis"
)

// WorkerOptions place one process inside a multi-process run.
type WorkerOptions struct {
	// Rank of this process. A negative rank is claimed from the free ones.
	Rank int
	// NP overrides the configured process count when positive.
	NP    int
	RunID string
}

// RunWorker executes a single rank over the redis transport. Rank 0 prints the
// elapsed time; the aggregator also stores every snapshot in redis under the run ID.
func RunWorker(ctx context.Context, opts Options, wopts WorkerOptions) error {
	if wopts.NP > 0 {
		opts.Overrides = config.Merge(opts.Overrides, map[string]any{"processes": wopts.NP})
	}
	cfg, logger, err := opts.setup(true)
	if err != nil {
		return err
	}
	if cfg.Serial {
		return fmt.Errorf("a serial run has no workers, use run --serial")
	}
	if wopts.RunID == "" {
		return fmt.Errorf("a worker needs a run ID shared by every rank")
	}
	// Every rank reads the same config; only an in-process run serves it.
	cfg.Listen = ""

	client := redisAdapter.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer client.Close()
	settings := redisOptions(cfg, wopts.RunID)

	st, err := createStack(cfg, logger, opts.stdout(), redisAdapter.NewFromClient(client, settings...))
	if err != nil {
		return err
	}
	defer st.close()

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	rank := wopts.Rank
	if rank < 0 {
		claimed, release, err := redisAdapter.NewClaimer(client, settings...).Claim(sigCtx, st.sim.Size())
		if err != nil {
			return handleExecutionError(opts.stdout(), err, sigCtx.Signal())
		}
		defer func() {
			if err := release(context.WithoutCancel(sigCtx)); err != nil {
				logger.Warn("failed to release rank", "rank", claimed, "err", err)
			}
		}()
		rank = claimed
	}
	if rank >= st.sim.Size() {
		return fmt.Errorf("rank %d out of range, the run has %d ranks", rank, st.sim.Size())
	}
	logger = logging.ForRank(logger, rank)

	t := redisAdapter.NewTransport(client, rank, st.sim.Size(), settings...)
	defer t.Close()

	logger.Info("worker started", "run_id", wopts.RunID, "ranks", st.sim.Size())
	rep, err := st.sim.RunRank(sigCtx, t)
	if err != nil {
		return handleExecutionError(opts.stdout(), err, sigCtx.Signal())
	}
	if rep.Timed() {
		printElapsed(opts.stdout(), rep.Duration)
	}
	return nil
}
