package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	pkghttp "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/http"
)

type contextKey string

const adminContextKey contextKey = "admin"

// RequireAuth validates the bearer access token and injects its claims into
// the request context.
func RequireAuth(tc *TokenCodec) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Missing token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "Missing token")
				return
			}

			claims, err := tc.VerifyAccess(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid/expired token")
				return
			}

			ctx := context.WithValue(r.Context(), adminContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromRequest extracts the verified access claims set by RequireAuth.
func ClaimsFromRequest(r *http.Request) *models.AccessClaims {
	claims, ok := r.Context().Value(adminContextKey).(*models.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}

// ContextWithClaims injects claims directly, for handler tests.
func ContextWithClaims(ctx context.Context, claims *models.AccessClaims) context.Context {
	return context.WithValue(ctx, adminContextKey, claims)
}
