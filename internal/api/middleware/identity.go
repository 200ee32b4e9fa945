package middleware

import (
	"net/http"

	"github.com/brewvote/server/internal/auth"
)

// Identity attaches the caller's principal when a valid token is present.
// Anonymous requests pass through; authorization happens in the domain.
func Identity(manager *auth.JWTManager, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := manager.Identify(r, cookieName)
			if !principal.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), principal)
			logger := LoggerFromContext(ctx).With().Str("user_id", principal.UserID).Logger()
			ctx = logger.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
