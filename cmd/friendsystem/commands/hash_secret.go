package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/platform/hash"
	"github.com/spf13/cobra"
)

var errEmptySecret = errors.New("client secret is empty")

func hashSecretCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Hash a proxy client secret for CLIENT_SECRET_HASH",
		Long:  "Hash a proxy client secret for CLIENT_SECRET_HASH. The secret is read from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, args)
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if cfg.App.Key == "" {
				return fmt.Errorf(message.EnvErrFmt, "KEY")
			}

			hashed, err := hash.NewArgon2Hasher(cfg.Argon2, cfg.App.Key).Hash(secret)
			if err != nil {
				return fmt.Errorf("hash secret: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return nil
		},
	}
}

func readSecret(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		if args[0] == "" {
			return "", errEmptySecret
		}
		return args[0], nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read secret: %w", err)
	}

	secret := strings.TrimSpace(line)
	if secret == "" {
		return "", errEmptySecret
	}
	return secret, nil
}
