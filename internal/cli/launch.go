package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/halo/pkg/adapters/process"
	"github.com/google/uuid"
)

// LaunchOptions describe a multi-process run.
type LaunchOptions struct {
	RunID string
	// Forward is passed unchanged to every worker after its rank flags.
	Forward []string
}

// Launch validates the run and starts one "halo worker" process per rank.
func Launch(ctx context.Context, opts Options, lopts LaunchOptions) error {
	cfg, logger, err := opts.setup(true)
	if err != nil {
		return err
	}
	if cfg.Serial {
		return fmt.Errorf("a serial run has no workers, use run --serial")
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate the halo executable: %w", err)
	}
	if lopts.RunID == "" {
		lopts.RunID = uuid.NewString()
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	np := cfg.Processes
	launcher := process.NewLauncher(exe,
		process.WithRunID(lopts.RunID),
		process.WithOutput(opts.stdout(), opts.stderr()),
		process.WithLogger(logger),
	)
	logger.Info("launching", "processes", np, "run_id", lopts.RunID)

	err = launcher.Launch(sigCtx, np, func(rank int) []string {
		args := []string{"worker",
			"--rank", strconv.Itoa(rank),
			"--np", strconv.Itoa(np),
			"--run-id", lopts.RunID,
		}
		if opts.ConfigPath != "" {
			args = append(args, "--config", opts.ConfigPath)
		}
		if opts.Debug {
			args = append(args, "--debug")
		}
		return append(args, lopts.Forward...)
	})
	if sigCtx.Err() != nil {
		return handleExecutionError(opts.stdout(), sigCtx.Err(), sigCtx.Signal())
	}
	return err
}
