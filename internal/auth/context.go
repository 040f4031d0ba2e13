package auth

import (
	"context"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

type ctxKeyUser struct{}

// WithUser stores the authenticated principal in the context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFromContext returns the authenticated principal, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKeyUser{}).(*models.User)
	return u, ok && u != nil
}
