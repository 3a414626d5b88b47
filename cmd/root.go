package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/research-session/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	configPath  string
	apiURL      string
	backendName string
	logFormat   string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "research-session",
	Short: "Manage legal research chat sessions",
	Long: `A CLI client for the legal research backend.

Conversations are kept as chat sessions in a local store. Each query is
sent to the research backend and the answer is saved alongside it.

Features:
  • Multiple chat sessions with automatic titles
  • One-time migration of the legacy single-history format
  • Structured results for legal search, drafting review and more
  • Deep links carrying a prompt (?prompt=...)
  • Daily legal news with one-step analysis
  • Export in multiple formats (JSONL, Markdown, YAML, JSON)

Quick Start:
  research-session ask "limitation period for a civil suit"
  research-session list                  # List sessions by date
  research-session show                  # View the active session
  research-session export --format md    # Export as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		internal.SyncLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom data directory for the session store")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.research-session/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Research backend URL")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Session store backend (sqlite, pebble, memory)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log encoding (console, json)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
