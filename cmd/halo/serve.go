package main

import (
	"github.com/aretw0/halo/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored snapshots over HTTP",
	Long: `Exposes the snapshots of a finished or running simulation: PGM files from --dir,
or the Redis store of --run-id.`,
	Example: `  halo serve --dir ./out
  halo serve --run-id 3f1c --redis-addr localhost:6379 --addr :9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := baseOptions(cmd)
		var err error
		if opts.Overrides, err = overrides(cmd, nil); err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		dir, _ := cmd.Flags().GetString("dir")
		runID, _ := cmd.Flags().GetString("run-id")
		return cli.Serve(cmd.Context(), opts, cli.ServeOptions{Addr: addr, Dir: dir, RunID: runID})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("dir", "", "Directory of PGM snapshots")
	serveCmd.Flags().String("run-id", "", "Run whose Redis snapshots are served")
	addRedisFlags(serveCmd.Flags())
}
