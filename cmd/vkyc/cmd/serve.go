package cmd

import (
	"github.com/spf13/cobra"

	"vkyc/cmd/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the stale-session sweep",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
