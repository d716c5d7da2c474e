package commands

import (
	"fmt"

	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/platform/jwt"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func tokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <player-id>",
		Short: "Issue an access token for a player without going through the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse player id: %w", err)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if cfg.App.Key == "" {
				return fmt.Errorf(message.EnvErrFmt, "KEY")
			}

			signer := jwt.NewGolangJWTSigner(cfg.JWT, cfg.App.Key)
			token, err := signer.Sign(player.String(), []string{cfg.JWT.Audience}, cfg.JWT.TTL.Duration)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
