package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/jwt"
)

// AuthRequired accepts verified access tokens only and attaches the caller as
// a user.Actor. The account is reloaded on every request so deactivated users
// are rejected while their token is still valid.
func AuthRequired(users user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.Unauthorized(w, "Invalid or missing token")
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != jwt.TokenTypeAccess {
				response.Unauthorized(w, "Invalid token type")
				return
			}
			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				response.Unauthorized(w, "Invalid token")
				return
			}

			u, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					response.Unauthorized(w, "User no longer exists")
					return
				}
				slog.Error("AuthRequired load user error", "error", err, "user_id", userID)
				response.HandleError(w, err)
				return
			}
			if !u.IsActive {
				response.HandleError(w, user.ErrInactiveUser)
				return
			}

			actor := u.Actor()
			if role, ok := claims["role"].(string); ok && user.Role(role).IsValid() {
				actor.Role = user.Role(role)
			}

			next.ServeHTTP(w, r.WithContext(user.WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}
