package middleware

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

// OptionalAuth reads the bearer token if present and valid, loads the
// user and injects it into context. It never returns 401; on any
// failure it simply passes the request through unauthenticated. Used on
// routes that behave differently for authenticated callers, like
// register honoring an admin's role grant.
func OptionalAuth(tm *auth.TokenManager, store repo.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearer(r.Header.Get("Authorization"))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tm.Validate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := store.GetUserByID(r.Context(), uid)
			if err != nil || !user.Active {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
