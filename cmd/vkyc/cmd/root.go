package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vkyc",
	Short: "vkyc is the video-KYC session authentication service",
	Long: `Session authentication core for partner-initiated video-KYC verifications.
Run "vkyc serve" to start the HTTP server; configuration is read from VKYC_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
