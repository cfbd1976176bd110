// Package cmd holds the development gateway's cobra commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adminauth-gateway",
	Short: "Development auth gateway for the admin console",
	Long: `A local stand-in for the admin auth gateway. It serves the /auth REST
endpoints the console calls, keeps accounts in SQLite and prints password
reset codes to stderr instead of emailing them.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
