package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/halo/internal/cli"
	"github.com/aretw0/halo/pkg/adapters/process"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker " + runArgs,
	Short: "Run a single rank over Redis",
	Long: `Runs one rank of a multi-process run. Every rank must be started with the same
arguments and run ID. Without --rank a free rank is claimed in Redis.
HALO_RANK, HALO_NP and HALO_RUN_ID are read when the flags are absent.`,
	Args: cobra.MaximumNArgs(len(positional)),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := baseOptions(cmd)
		var err error
		if opts.Overrides, err = overrides(cmd, args); err != nil {
			return err
		}

		wopts := cli.WorkerOptions{}
		if wopts.Rank, err = intFlag(cmd, "rank", process.EnvRank, -1); err != nil {
			return err
		}
		if wopts.NP, err = intFlag(cmd, "np", process.EnvNP, 0); err != nil {
			return err
		}
		wopts.RunID, _ = cmd.Flags().GetString("run-id")
		if !cmd.Flags().Changed("run-id") {
			wopts.RunID = os.Getenv(process.EnvRunID)
		}
		return cli.RunWorker(cmd.Context(), opts, wopts)
	},
}

// intFlag reads a flag, then env, then falls back to def.
func intFlag(cmd *cobra.Command, name, env string, def int) (int, error) {
	if cmd.Flags().Changed(name) {
		return cmd.Flags().GetInt(name)
	}
	v, ok := os.LookupEnv(env)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", env, v, err)
	}
	return n, nil
}

func init() {
	rootCmd.AddCommand(workerCmd)

	addRunFlags(workerCmd.Flags())
	workerCmd.Flags().Int("rank", -1, "Rank of this process (-1 claims a free one)")
	workerCmd.Flags().String("run-id", "", "Run ID shared by every rank")
}
