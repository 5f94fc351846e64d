package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/codequest/codequest-api/internal/api/shared"
	"github.com/codequest/codequest-api/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates JWT tokens from the Authorization header and
// adds the caller identity (user ID and role) to the request context for
// authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(
				w, r,
				http.StatusUnauthorized,
				"",
				"Authorization header required",
			)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(
				w, r,
				http.StatusUnauthorized,
				"",
				"Invalid authorization format",
			)
			return
		}

		caller, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch err {
			case auth.ErrExpiredToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Token expired")
			case auth.ErrInvalidToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Invalid token")
			default:
				slog.Error("failed to validate token", "error", err)
				shared.RespondWithError(
					w, r,
					http.StatusInternalServerError,
					"",
					"Authentication error",
				)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithCaller(r.Context(), caller)))
	})
}
