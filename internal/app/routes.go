package app

import (
	"context"
	"net/http"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/auth"
	"github.com/ferdiebergado/friendsystem/internal/friend"
	"github.com/ferdiebergado/friendsystem/internal/middleware"
	"github.com/ferdiebergado/friendsystem/internal/pkg/web"
	"github.com/ferdiebergado/friendsystem/internal/platform/router"
	"github.com/ferdiebergado/friendsystem/internal/platform/validation"
)

const healthTimeout = 2 * time.Second

type HealthResponse struct {
	Status string `json:"status"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthHandler(p pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			web.RespondServiceUnavailable(w, err)
			return
		}

		web.RespondOK(w, nil, &HealthResponse{Status: "ok"})
	}
}

func mountHealthRoutes(r router.Router, p pinger) {
	r.Get("/health", healthHandler(p))
}

func mountAuthRoutes(r router.Router, handler *auth.Handler, validator validation.Validator, maxBodySize int64) {
	r.Group("/auth", func(gr router.Router) {
		gr.Post("/token", handler.IssueToken,
			middleware.DecodePayload[auth.IssueTokenRequest](maxBodySize),
			middleware.ValidateInput[auth.IssueTokenRequest](validator))
	})
}

func mountFriendRoutes(r router.Router, handler *friend.Handler, validator validation.Validator, requireToken router.Middleware, maxBodySize int64) {
	r.Group("", func(gr router.Router) {
		gr.Get("/friends", handler.ListFriends)
		gr.Get("/friends/{id}", handler.AreFriends)
		gr.Delete("/friends/{id}", handler.RemoveFriend)

		gr.Get("/requests", handler.ListRequests)
		gr.Post("/requests", handler.SendRequest,
			middleware.DecodePayload[friend.SendRequestRequest](maxBodySize),
			middleware.ValidateInput[friend.SendRequestRequest](validator))
		gr.Post("/requests/{id}/accept", handler.AcceptRequest)
		gr.Delete("/requests/{id}", handler.RemoveRequest)
	}, requireToken)
}

func mountEventRoutes(r router.Router, events http.Handler, requireToken router.Middleware) {
	r.Get("/events", events.ServeHTTP, requireToken)
}
