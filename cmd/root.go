package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	debug  bool
	dryRun bool

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "mm",
	Short: "Reclaim disk space on your Mac",
	Long: `MacMole - Reclaim disk space on your Mac.

Scans three categories of reclaimable storage: installed applications,
leftover installer files, and development build/cache directories.
Pick a category, select what to remove, confirm, done.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview the deletion plan without deleting")

	// Register all subcommands
	rootCmd.AddCommand(appsCmd)
	rootCmd.AddCommand(installersCmd)
	rootCmd.AddCommand(workspacesCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
