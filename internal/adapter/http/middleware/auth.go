package middleware

import (
	"net/http"
	"strings"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/infrastructure/auth"
)

// AuthMiddleware authenticates requests with a Bearer JWT and attaches the
// caller to the request context.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := domain.ContextWithUser(r.Context(), domain.AuthUser{
				ID:    claims.UserID,
				Email: claims.Email,
				Role:  claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireBalanceAdmin restricts a route to roles that may adjust balances.
func RequireBalanceAdmin(next http.Handler) http.Handler {
	return requireRole(next, domain.Role.CanAdjustBalance)
}

// RequireGiftCardStaff restricts a route to roles that may verify gift cards
// and mark service cards used.
func RequireGiftCardStaff(next http.Handler) http.Handler {
	return requireRole(next, domain.Role.CanVerifyGiftCards)
}

func requireRole(next http.Handler, allowed func(domain.Role) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := domain.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if !allowed(user.Role) {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
