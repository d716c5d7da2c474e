package commands

import (
	"errors"
	"fmt"

	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/platform/db"
	"github.com/spf13/cobra"
)

var errNothingToMigrate = errors.New("the memory driver has no schema to migrate")

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if cfg.DB.Driver == config.DriverMemory {
				return errNothingToMigrate
			}

			conn, err := db.Connect(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.NewMigrator(conn, db.Dialect(cfg.DB.Driver), nil).Up(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}
