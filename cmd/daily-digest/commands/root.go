// Package commands implements the daily-digest CLI using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with every subcommand registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "daily-digest",
		Short: "Daily group chat report with an optional AI brief",
		Long: `daily-digest scans one civil day of a group chat, builds a plain-text
report with per-sender counts and an optional AI brief, saves it and
delivers it to Telegram or Lark chats.

Examples:
  daily-digest once
  daily-digest once --date 2024-06-01 --dry-run
  daily-digest schedule
  daily-digest mcp`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newOnceCmd(),
		newScheduleCmd(),
		newMCPCmd(version),
	)

	rootCmd.PersistentFlags().String("env-file", "", "path to a .env file (default ./.env when present)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logs")

	return rootCmd
}
