package httpctx

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

// User returns the authenticated principal from context if available.
func User(ctx context.Context) (*models.User, bool) {
	return auth.UserFromContext(ctx)
}

// UserID returns the principal's id from context.
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	if u, ok := auth.UserFromContext(ctx); ok {
		return u.ID, true
	}
	return primitive.NilObjectID, false
}
