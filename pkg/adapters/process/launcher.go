// Package process starts the ranks of a run as separate OS processes.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Environment variables set on every child.
const (
	EnvRank  = "HALO_RANK"
	EnvNP    = "HALO_NP"
	EnvRunID = "HALO_RUN_ID"
)

// ArgsFunc returns the command-line arguments of one rank.
type ArgsFunc func(rank int) []string

// Launcher runs np copies of a command, one per rank, and waits for all of them.
type Launcher struct {
	command string
	runID   string
	env     []string
	stdout  io.Writer
	stderr  io.Writer
	grace   time.Duration
	logger  *slog.Logger
}

// LauncherOption configures the launcher.
type LauncherOption func(*Launcher)

// WithRunID is exported to the children as HALO_RUN_ID.
func WithRunID(id string) LauncherOption {
	return func(l *Launcher) {
		l.runID = id
	}
}

// WithEnv adds KEY=VALUE pairs to the environment of every child.
func WithEnv(env ...string) LauncherOption {
	return func(l *Launcher) {
		l.env = append(l.env, env...)
	}
}

// WithOutput sets where the children's stdout and stderr go.
func WithOutput(stdout, stderr io.Writer) LauncherOption {
	return func(l *Launcher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// WithGracePeriod is how long a canceled child may take to exit after an interrupt
// before it is killed.
func WithGracePeriod(d time.Duration) LauncherOption {
	return func(l *Launcher) {
		l.grace = d
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) LauncherOption {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLauncher creates a launcher for command, usually os.Executable().
func NewLauncher(command string, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		command: command,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		grace:   5 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch starts ranks 0..np-1 and waits for them. Output is forwarded line by line;
// stderr lines are prefixed with their rank. The first child to fail cancels the
// others.
func (l *Launcher) Launch(ctx context.Context, np int, args ArgsFunc) error {
	if np < 1 {
		return fmt.Errorf("launch needs at least one process, got %d", np)
	}

	var outMu, errMu sync.Mutex
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ectx := errgroup.WithContext(runCtx)
	for rank := 0; rank < np; rank++ {
		cmd := exec.CommandContext(ectx, l.command, args(rank)...)
		// Interrupt first so the child can leave its barriers cleanly.
		cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
		cmd.WaitDelay = l.grace
		cmd.Env = append(cmd.Environ(), l.env...)
		cmd.Env = append(cmd.Env,
			EnvRank+"="+strconv.Itoa(rank),
			EnvNP+"="+strconv.Itoa(np),
			EnvRunID+"="+l.runID,
		)

		stdout := newPrefixWriter(l.stdout, &outMu, "")
		stderr := newPrefixWriter(l.stderr, &errMu, fmt.Sprintf("[rank %d] ", rank))
		cmd.Stdout = stdout
		cmd.Stderr = stderr

		if err := cmd.Start(); err != nil {
			cancel()
			return errors.Join(fmt.Errorf("failed to start rank %d: %w", rank, err), eg.Wait())
		}
		l.logger.Debug("rank started", "rank", rank, "pid", cmd.Process.Pid)

		eg.Go(func() error {
			err := cmd.Wait()
			stdout.Flush()
			stderr.Flush()
			if err != nil {
				if ectx.Err() != nil && ctx.Err() == nil {
					// A sibling failed first; its error is the one reported.
					return fmt.Errorf("rank %d stopped: %w", rank, err)
				}
				l.logger.Error("rank failed", "rank", rank, "error", err)
				return fmt.Errorf("rank %d failed: %w", rank, err)
			}
			l.logger.Debug("rank exited", "rank", rank)
			return nil
		})
	}
	return eg.Wait()
}
