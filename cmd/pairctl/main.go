package main

import (
	"os"

	"github.com/pairtrack/pairtrack/cmd/pairctl/cmd"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "pairctl",
		Short:        "Admin tools for PairTrack",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.WeekCmd())
	rootCmd.AddCommand(cmd.PairsCmd())
	rootCmd.AddCommand(cmd.UsersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
