package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the flowpilot application
var rootCmd = &cobra.Command{
	Use:   "flowpilot",
	Short: "Google Calendar backend with OAuth session-credential lifecycle",
	Long: `flowpilot is a small backend that lets users connect their Google
Calendar through OAuth. It initiates consent, exchanges authorization
codes for tokens, persists credentials per user email, and refreshes
them transparently when calendar endpoints are hit.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "flowpilot version %s\n" .Version}}`)

	// If no subcommand is provided, serve by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newInitDBCmd())
}
