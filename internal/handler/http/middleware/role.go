package middleware

import (
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
)

// RequirePermission rejects callers whose role lacks perm. It must run after
// AuthRequired.
func RequirePermission(authorizer authz.Authorizer, perm user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := user.ActorFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if err := authorizer.Require(actor, perm); err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
