package main

import (
	"github.com/aretw0/halo/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run " + runArgs,
	Short: "Run every rank in this process",
	Long: `Runs the simulation with one goroutine per rank. <type> is LINE, T_SHAPE or CROSS
(or 0, 1, 2). Passing output_dir writes one PGM image per generation and reserves one
process for the aggregator.`,
	Example: `  halo run 512 100 CROSS --np 5
  halo run 64 10 LINE ./out --np 3 --strategy sync
  halo run 64 10 T_SHAPE --serial --print-boards`,
	Args: cobra.MaximumNArgs(len(positional)),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := baseOptions(cmd)
		var err error
		if opts.Overrides, err = overrides(cmd, args); err != nil {
			return err
		}
		return cli.RunLocal(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	addRunFlags(runCmd.Flags())
	runCmd.Flags().String("listen", "", "Serve snapshots, events and metrics on this address while running")
}
