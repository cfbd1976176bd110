package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/adminauth/internal/buildinfo"
	"github.com/dmitrijs2005/adminauth/internal/logging"
	"github.com/dmitrijs2005/adminauth/internal/server"
	"github.com/dmitrijs2005/adminauth/internal/server/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cmd.Flags().GetString(config.FlagConfig)
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := config.ApplyFlags(cmd.Flags(), cfg); err != nil {
			return err
		}

		buildinfo.PrintBuildData(cmd.ErrOrStderr())
		logger := logging.New(os.Stderr, cfg.LogLevel, true)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		defer stop()

		app, err := server.NewApp(ctx, cfg, logger, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return app.Run(ctx)
	},
}

func init() {
	config.RegisterFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

// executeContext is Execute with a caller supplied context and arguments.
func executeContext(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
