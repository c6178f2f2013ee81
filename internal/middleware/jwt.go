package middleware

import (
	"net/http"

	"github.com/helpmesh/helpmesh/internal/security"
	"github.com/helpmesh/helpmesh/internal/transport"
)

// JWT authenticates requests via the Authorization header and injects the
// verified user id and role into the request context. Rejections happen
// before any handler state change.
func JWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := security.BearerFromHeader(r.Header.Get("Authorization"))
			if !ok {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed bearer token")
				return
			}

			claims, err := security.VerifyToken(tokenString, secret)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			ctx := InjectUser(r.Context(), claims.UserID, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
