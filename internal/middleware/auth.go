package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kevlar-dev/blog-api/internal/auth"
)

// RequireAuth is middleware that validates the Authorization bearer token
// and injects the user_id into the request context. It fails closed:
// anything short of a verifiable token is a 401.
func RequireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			userID, err := auth.VerifyToken(secret, strings.TrimSpace(header[7:]))
			if err != nil || userID == "" {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
