package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/pkg/web"
	"github.com/google/uuid"
)

const maskChar = "*"

type TokenIssuer interface {
	IssueToken(ctx context.Context, params IssueTokenParams) (*Token, error)
}

type Handler struct {
	svc TokenIssuer
}

func NewHandler(svc TokenIssuer) *Handler {
	return &Handler{svc: svc}
}

type IssueTokenRequest struct {
	ClientSecret string `json:"client_secret,omitempty" validate:"required"`
	PlayerID     string `json:"player_id,omitempty" validate:"required,uuid"`
}

func (r IssueTokenRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_secret", maskChar),
		slog.String("player_id", r.PlayerID),
	)
}

type IssueTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// IssueToken handles POST /auth/token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	req, err := web.ParamsFromContext[IssueTokenRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidPlayerID, nil)
		return
	}

	params := IssueTokenParams{
		ClientSecret: req.ClientSecret,
		PlayerID:     playerID,
	}
	token, err := h.svc.IssueToken(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidClient):
			web.RespondUnauthorized(w, err, message.InvalidClient, nil)
		case errors.Is(err, ErrNotConfigured):
			web.RespondServiceUnavailable(w, err)
		default:
			web.RespondInternalServerError(w, err)
		}
		return
	}

	slog.Info("Token issued.", "params", params)

	msg := MsgTokenIssued
	data := &IssueTokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(token.ExpiresIn.Seconds()),
	}
	web.RespondOK(w, &msg, data)
}
