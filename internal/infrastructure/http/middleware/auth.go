package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cadencehq/cadence/internal/infrastructure/http/response"
)

// Auth is HTTP middleware validating the static service token. The API
// is service-to-service; callers share a single bearer token rather
// than carrying per-user credentials.
type Auth struct {
	token string
}

// NewAuth creates a new auth middleware checking the given token.
func NewAuth(token string) *Auth {
	return &Auth{token: token}
}

// Validate is a Chi middleware that validates the service token from
// the Authorization header.
// Expects format: "Authorization: Bearer <token>"
func (a *Auth) Validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			slog.WarnContext(r.Context(), "authentication failed: missing Authorization header",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "missing Authorization header")
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			slog.WarnContext(r.Context(), "authentication failed: invalid Authorization header format",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "invalid Authorization header format, expected: Bearer <token>")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			slog.WarnContext(r.Context(), "authentication failed: invalid service token",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "invalid service token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
