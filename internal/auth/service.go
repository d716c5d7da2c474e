package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/platform/hash"
	"github.com/ferdiebergado/friendsystem/internal/platform/jwt"
	"github.com/google/uuid"
)

var (
	ErrInvalidClient = errors.New("auth service: invalid client secret")
	ErrNotConfigured = errors.New("auth service: client secret hash is not configured")
)

const TokenTypeBearer = "Bearer"

type IssueTokenParams struct {
	ClientSecret string
	PlayerID     uuid.UUID
}

func (p IssueTokenParams) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_secret", maskChar),
		slog.String("player_id", p.PlayerID.String()),
	)
}

type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

var _ TokenIssuer = (*Service)(nil)

// Service issues access tokens to the trusted proxy on behalf of its players.
type Service struct {
	hasher     hash.Hasher
	signer     jwt.Signer
	secretHash string
	audience   string
	ttl        time.Duration
}

func NewService(provider *Provider) *Service {
	cfg := provider.Cfg
	return &Service{
		hasher:     provider.Hasher,
		signer:     provider.Signer,
		secretHash: cfg.Auth.ClientSecretHash,
		audience:   cfg.JWT.Audience,
		ttl:        cfg.JWT.TTL.Duration,
	}
}

// IssueToken verifies the client secret and signs a token whose subject is the player.
func (s *Service) IssueToken(_ context.Context, params IssueTokenParams) (*Token, error) {
	if s.secretHash == "" {
		return nil, ErrNotConfigured
	}

	ok, err := s.hasher.Verify(params.ClientSecret, s.secretHash)
	if err != nil {
		return nil, fmt.Errorf("verify client secret: %w", err)
	}
	if !ok {
		return nil, ErrInvalidClient
	}

	accessToken, err := s.signer.Sign(params.PlayerID.String(), []string{s.audience}, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign access token for %s: %w", params.PlayerID, err)
	}

	return &Token{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   s.ttl,
	}, nil
}
