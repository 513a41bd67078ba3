package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/halo"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of halo",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "halo version %s\n", strings.TrimSpace(halo.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
