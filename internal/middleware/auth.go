package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-backend/internal/services"
	"github.com/vidtube/vidtube-backend/pkg/apierr"
)

type contextKey string

const userIDKey contextKey = "user_id"

// RequireAuth validates the access token from the accessToken cookie or the
// Authorization header and attaches the user ID to the request context.
func RequireAuth(tokens *services.TokenService, renderError func(http.ResponseWriter, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := accessTokenFromRequest(r)
			if tokenString == "" {
				renderError(w, apierr.Unauthorized("Unauthorized request"))
				return
			}

			claims, err := tokens.VerifyAccess(tokenString)
			if err != nil {
				renderError(w, apierr.Unauthorized("Invalid access token"))
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				renderError(w, apierr.Unauthorized("Invalid access token"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user's ID attached by RequireAuth.
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return id, ok
}

func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
