package middleware

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

// RequireAuth verifies the bearer token, reloads the referenced user
// from the store, and injects it into the context. Tokens of deleted or
// deactivated users fail here even if the signature is still valid.
func RequireAuth(tm *auth.TokenManager, store repo.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearer(r.Header.Get("Authorization"))
			if err != nil {
				httpserver.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			claims, err := tm.Validate(token)
			if err != nil {
				httpserver.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				return
			}
			uid, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				httpserver.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				return
			}
			user, err := store.GetUserByID(r.Context(), uid)
			if err != nil || !user.Active {
				httpserver.JSON(w, http.StatusUnauthorized, map[string]string{"error": "account not available"})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
