package chi

import (
	"net/http"
	"strings"

	"github.com/lodestar-search/lodestar/internal/domain"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// devUserHeader selects the tenant when authentication is disabled.
const devUserHeader = "X-User-ID"

// BearerAuthMiddleware returns a middleware that resolves Bearer API keys to
// user identities and stores the result in the request context. If apiKeys is
// empty, authentication is disabled and the tenant comes from the X-User-ID
// header (falling back to "local").
func BearerAuthMiddleware(apiKeys map[string]string) func(http.Handler) http.Handler {
	validKeys := make(map[string]domain.UserID, len(apiKeys))
	for k, user := range apiKeys {
		if k != "" && user != "" {
			validKeys[k] = domain.UserID(user)
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled: trust the dev header
		if len(validKeys) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user := domain.UserID(r.Header.Get(devUserHeader))
				if user == "" {
					user = "local"
				}
				next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					"unauthorized", "authorization header must use Bearer scheme")
				return
			}

			user, ok := validKeys[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
		})
	}
}
