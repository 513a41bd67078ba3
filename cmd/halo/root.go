package main

import (
	"fmt"
	"os"

	"github.com/aretw0/halo/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "halo",
	Short: "halo runs Conway's Game of Life partitioned across ranks",
	Long: `halo splits a square board into horizontal blocks, one per worker rank, and
exchanges boundary rows between neighbours every generation. An optional aggregator
rank collects every generation into snapshots.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML file with run settings")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// baseOptions reads the persistent flags.
func baseOptions(cmd *cobra.Command) cli.Options {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Options{
		ConfigPath: path,
		Debug:      debug,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	}
}
