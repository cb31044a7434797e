package cmd

import (
	"fmt"

	"github.com/VoxDroid/dopesheet/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dopesheet %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
