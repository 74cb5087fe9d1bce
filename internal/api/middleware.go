package api

import (
	"net/http"
	"strings"
	"time"

	"trekbooking/pkg/authtoken"
)

// TokenVerifier is satisfied by authtoken.Verifier.
type TokenVerifier interface {
	Verify(token string, now time.Time) (*authtoken.Identity, error)
}

// UserAuth requires `Authorization: Bearer <JWT>` and attaches the caller identity to the
// request context.
func UserAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}

			id, err := v.Verify(strings.TrimSpace(authz[7:]), time.Now())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin must run after UserAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil {
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
			return
		}
		if !id.IsAdmin() {
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
