package commands

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ferdiebergado/friendsystem/internal/app"
	"github.com/spf13/cobra"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the event hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if err := app.Run(ctx, cfg); err != nil {
				return err
			}

			slog.Info("Server shutdown gracefully.")
			return nil
		},
	}
}
