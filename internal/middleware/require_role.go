// internal/middleware/require_role.go
package middleware

import (
	"net/http"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

// RequireRole passes only principals whose role is in the allowed set.
// A valid principal with the wrong role gets 403, never 401.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.UserFromContext(r.Context())
			if !ok {
				httpserver.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			if _, ok := set[u.Role]; !ok {
				httpserver.JSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Elevated is shorthand for the roles allowed to act on resources they
// do not own.
func Elevated() func(http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin, models.RoleOfficer)
}
