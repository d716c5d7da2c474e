package app

import (
	"context"
	"fmt"

	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/friend"
	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/platform/cache"
	"github.com/ferdiebergado/friendsystem/internal/platform/hash"
	"github.com/ferdiebergado/friendsystem/internal/platform/jwt"
	"github.com/ferdiebergado/friendsystem/internal/platform/router"
	"github.com/ferdiebergado/friendsystem/internal/platform/validation"
	"github.com/google/uuid"
)

type Provider struct {
	Storage   *Storage
	Signer    jwt.Signer
	Hasher    hash.Hasher
	Validator validation.Validator
	Router    router.Router
	Cache     friend.Cache
}

// NewProvider builds the production dependencies for cfg. The caller owns
// the returned storage and must close it.
func NewProvider(ctx context.Context, cfg *config.Config) (*Provider, error) {
	key := cfg.App.Key
	if key == "" {
		return nil, fmt.Errorf(message.EnvErrFmt, "KEY")
	}

	storage, err := OpenStorage(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Storage:   storage,
		Signer:    jwt.NewGolangJWTSigner(cfg.JWT, key),
		Hasher:    hash.NewArgon2Hasher(cfg.Argon2, key),
		Validator: validation.NewGoPlaygroundValidator(),
		Router:    router.NewGoexpressRouter(),
		Cache:     cache.New[uuid.UUID, []friend.Friend](cfg.Cache.Size, cfg.Cache.TTL.Duration),
	}, nil
}
