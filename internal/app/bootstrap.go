package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/middleware"
	"github.com/ferdiebergado/friendsystem/internal/pkg/logging"
	"github.com/ferdiebergado/friendsystem/internal/platform/router"
	"github.com/ferdiebergado/goexpress"
	"github.com/ferdiebergado/gopherkit/env"
)

// LoadConfig loads envFile into the environment outside production, then
// reads cfgFile and installs the configured logger.
func LoadConfig(cfgFile, envFile string) (*config.Config, error) {
	if os.Getenv("ENV") != config.EnvProduction && envFile != "" {
		if err := loadEnvFile(envFile); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logging.SetupLogger(cfg.App.Env, cfg.App.LogLevel, os.Stdout)
	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("env file not found, skipping", "env_file", envFile)
		return nil
	}

	if err := env.Load(envFile); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// DefaultMiddlewares is the chain every route runs through.
func DefaultMiddlewares() []router.Middleware {
	return []router.Middleware{
		middleware.InjectWriter,
		goexpress.RecoverFromPanic,
		middleware.LogRequest,
		middleware.ContextGuard,
		middleware.CheckContentType,
	}
}

// Run serves the API for cfg until ctx ends.
func Run(ctx context.Context, cfg *config.Config) error {
	slog.Info("Initializing...")

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Storage.Close(); err != nil {
			slog.Error("failed to close storage", "reason", err)
		}
	}()

	return New(cfg, provider, DefaultMiddlewares()).Run(ctx)
}
