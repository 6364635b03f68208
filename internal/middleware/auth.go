package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"orbitarium-server/internal/auth"
	apperrors "orbitarium-server/internal/shared/errors"
	"orbitarium-server/internal/shared/response"
)

type contextKey string

const UserContextKey contextKey = "user"

// JWTMiddleware authenticates the request from the auth cookie and attaches
// the editor claims to the request context.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "jwt",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		cookie, err := r.Cookie("auth_token")
		if err != nil {
			response.Error(w, r, logger, apperrors.Unauthorized("authentication required"))
			return
		}

		claims, err := auth.ValidateJWT(cookie.Value)
		if err != nil {
			response.Error(w, r, logger, apperrors.Unauthorized("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		logger.Debug("JWT authentication successful",
			"editor_id", claims.EditorID,
			"username", claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the authenticated editor's claims, or nil.
func GetUserFromContext(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
