package main

import (
	"github.com/aretw0/halo/internal/cli"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch " + runArgs,
	Short: "Run every rank as its own process over Redis",
	Long: `Starts --np copies of this executable as "halo worker" processes sharing a run ID.
Ranks talk through Redis. The first process to fail stops the others.`,
	Example: `  halo launch 512 100 CROSS --np 4 --redis-addr localhost:6379`,
	Args:    cobra.MaximumNArgs(len(positional)),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := baseOptions(cmd)
		var err error
		if opts.Overrides, err = overrides(cmd, args); err != nil {
			return err
		}
		runID, _ := cmd.Flags().GetString("run-id")
		return cli.Launch(cmd.Context(), opts, cli.LaunchOptions{
			RunID:   runID,
			Forward: forwarded(cmd, args),
		})
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)

	addRunFlags(launchCmd.Flags())
	launchCmd.Flags().String("run-id", "", "Run ID shared by the workers (default: random)")
}
