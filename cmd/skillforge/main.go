package main

import (
	"os"

	"github.com/spf13/cobra"

	"skillforge/internal/interfaces/cli/migrate"
	"skillforge/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skillforge",
		Short: "SkillForge - partner licensing and entitlement server",
		Long:  `SkillForge serves the partner approval flow and the per-tenant license gate, with built-in migration tooling.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
