package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/pkg/web"
)

// ContextGuard stops requests whose context already ended, for example when
// the proxy gave up on a slow call, before any storage work starts.
func ContextGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.Context().Err(); err != nil {
			slog.Debug("request context ended before routing", "method", r.Method, "path", r.URL.Path, "reason", err)
			web.RespondRequestTimeout(w, err, message.RequestGone, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
