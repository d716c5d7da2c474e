package auth

import (
	"fmt"
	"net/http"

	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/pkg/security"
	"github.com/ferdiebergado/friendsystem/internal/pkg/web"
	"github.com/ferdiebergado/friendsystem/internal/platform/jwt"
	"github.com/google/uuid"
)

// RequireToken rejects requests without a valid access token and stores the
// player named by the token subject in the request context.
func RequireToken(signer jwt.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := security.ExtractBearerToken(r)
			if err != nil {
				web.RespondUnauthorized(w, err, message.InvalidUser, nil)
				return
			}

			claims, err := signer.Verify(token)
			if err != nil {
				web.RespondUnauthorized(w, err, message.InvalidUser, nil)
				return
			}

			playerID, err := uuid.Parse(claims.PlayerID)
			if err != nil {
				web.RespondUnauthorized(w, fmt.Errorf("token subject: %w", err), message.InvalidUser, nil)
				return
			}

			ctx := ContextWithPlayer(r.Context(), playerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
