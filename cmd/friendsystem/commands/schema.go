package commands

import (
	"fmt"

	"github.com/ferdiebergado/friendsystem/internal/platform/db"
	"github.com/spf13/cobra"
)

func schemaCmd() *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the database schema for a dialect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := db.Schema(db.Dialect(dialect))
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), schema)
			return nil
		},
	}

	cmd.Flags().StringVar(&dialect, "dialect", string(db.Postgres), "postgres or sqlite")
	return cmd
}
