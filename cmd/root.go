package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version info passed from main
	appVersion   string
	appGitCommit string
	appBuildTime string

	// Global flags
	cfgFile string
	debug   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tracefetch",
	Short: "Collect and analyze HTTP download traces for fixed test assets",
	Long: `tracefetch downloads well-known test assets over HTTP, throws the
payload away and keeps the client's timestamped protocol trace.

A run produces a log holding only the timestamped event lines, which the
report command turns into transfer statistics, CSV exports and overlay
charts. Batches of consecutive runs are collected with the collect
command and recorded in a local archive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands and executes the root command
func Execute(ver, commit, built string) error {
	appVersion = ver
	appGitCommit = commit
	appBuildTime = built

	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.tracefetch/config.yml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Add all subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information for tracefetch.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Tracefetch Version: %s\n", appVersion)
		fmt.Printf("Git Commit: %s\n", appGitCommit)
		fmt.Printf("Build Time: %s\n", appBuildTime)
	},
}
