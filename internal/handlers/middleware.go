package handlers

import (
	"net/http"
	"strings"

	"github.com/schedulr/apiserver/internal/services"
)

// TokenHeader carries the bearer token on task routes.
const TokenHeader = "x-auth-token"

// RequireAuth rejects requests without a valid token and injects the token's
// user id into the request context. It has no other side effects.
func RequireAuth(tokens *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := requestToken(r)
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

// requestToken reads x-auth-token, falling back to an Authorization bearer
// header.
func requestToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
