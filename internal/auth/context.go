package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type ctxKey int

const playerCtxKey ctxKey = iota + 1

var ErrNoPlayer = errors.New("no player in context")

// ContextWithPlayer returns a new context carrying the authenticated player's id.
//
//nolint:ireturn // returning context.Context is intentional: it's the standard context type
func ContextWithPlayer(baseCtx context.Context, playerID uuid.UUID) context.Context {
	return context.WithValue(baseCtx, playerCtxKey, playerID)
}

// PlayerFromContext extracts the player id set by RequireToken.
func PlayerFromContext(ctx context.Context) (uuid.UUID, error) {
	val := ctx.Value(playerCtxKey)
	if val == nil {
		return uuid.Nil, ErrNoPlayer
	}

	playerID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("player id is not a uuid.UUID: %T", val)
	}

	return playerID, nil
}
