package middleware

import "net/http"

// InjectWriter binds a SafeResponseWriter to the request context so later
// middleware can read the status and size of the response. A writer that is
// already wrapped is passed through untouched.
func InjectWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(*SafeResponseWriter); ok {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(NewSafeResponseWriter(r.Context(), w), r)
	})
}
