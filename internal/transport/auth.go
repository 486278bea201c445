package transport

import (
	"log/slog"
	"net/http"

	"github.com/ganot/todos/internal/identity"
)

// IdentityMiddleware resolves the bearer token on every request and stores
// the user ID in the request context. Requests without a valid token continue
// as anonymous; the services turn anonymous mutations into no-ops.
func IdentityMiddleware(resolver identity.Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := identity.ResolveHeader(r.Context(), resolver, header)
			if err != nil {
				if logger != nil {
					logger.DebugContext(r.Context(), "anonymous request", "path", r.URL.Path, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), userID)))
		})
	}
}
