package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Ekram2004/task-manager-saas-collaborative/logging"
	"github.com/Ekram2004/task-manager-saas-collaborative/models"
	"github.com/Ekram2004/task-manager-saas-collaborative/services"
)

type contextKey string

const requesterKey contextKey = "requester"

// JWTAuth validates the bearer token and loads the requester fresh from the
// database. Organization and role always come from the user record, never
// from the token's claims, so a token issued before a membership change
// cannot act on stale organization state.
func JWTAuth(jwtService *services.JWTService, userService *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			user, err := userService.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), requesterKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequesterFromContext returns the authenticated user placed in the context
// by JWTAuth.
func RequesterFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(requesterKey).(models.User)
	return user, ok
}

// WithRequester is a test helper for building contexts that already carry an
// authenticated user.
func WithRequester(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, requesterKey, user)
}
