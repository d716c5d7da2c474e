// Package commands holds the friendsystem command line.
package commands

import (
	"github.com/ferdiebergado/friendsystem/internal/app"
	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile string
	envFile string
}

// loadConfig reads the files named by the persistent flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return app.LoadConfig(o.cfgFile, o.envFile)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "friendsystem",
		Short:         "Friend requests and friendships for a proxy network",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "config.json", "config file (.json, .yaml or .yml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file loaded outside production")

	root.AddCommand(
		serveCmd(opts),
		migrateCmd(opts),
		schemaCmd(),
		tokenCmd(opts),
		hashSecretCmd(opts),
	)
	return root
}

func Execute() error {
	return newRootCmd().Execute()
}
