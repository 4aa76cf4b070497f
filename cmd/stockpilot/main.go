package main

import (
	"os"

	"github.com/spf13/cobra"

	"stockpilot/internal/interfaces/cli/migrate"
	"stockpilot/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stockpilot",
		Short: "StockPilot - inventory backend with tier entitlements",
		Long:  `StockPilot is the inventory and POS backend: HTTP API, tier entitlement engine, lifecycle scheduler, and migration tools.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
