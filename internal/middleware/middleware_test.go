package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

// fakeStore stubs only the lookups auth middleware needs.
type fakeStore struct {
	repo.Store
	users map[primitive.ObjectID]*models.User
}

func (f *fakeStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperr.NotFound("user not found")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	active := &models.User{ID: primitive.NewObjectID(), Username: "a", Role: models.RoleMember, Active: true}
	inactive := &models.User{ID: primitive.NewObjectID(), Username: "b", Role: models.RoleMember, Active: false}
	store := &fakeStore{users: map[primitive.ObjectID]*models.User{
		active.ID:   active,
		inactive.ID: inactive,
	}}
	h := RequireAuth(tm, store)(okHandler())

	t.Run("no header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := tm.Generate(active)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("deactivated user", func(t *testing.T) {
		token, err := tm.Generate(inactive)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token for deleted user", func(t *testing.T) {
		ghost := &models.User{ID: primitive.NewObjectID(), Username: "gone", Role: models.RoleAdmin, Active: true}
		token, err := tm.Generate(ghost)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	admin := &models.User{ID: primitive.NewObjectID(), Username: "root", Role: models.RoleAdmin, Active: true}
	inactive := &models.User{ID: primitive.NewObjectID(), Username: "off", Role: models.RoleMember, Active: false}
	store := &fakeStore{users: map[primitive.ObjectID]*models.User{
		admin.ID:    admin,
		inactive.ID: inactive,
	}}

	var seen *models.User
	h := OptionalAuth(tm, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no header passes through anonymous", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/register", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("garbage token passes through anonymous", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest("POST", "/auth/register", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("valid token populates principal", func(t *testing.T) {
		seen = nil
		token, err := tm.Generate(admin)
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/auth/register", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, admin.ID, seen.ID)
	})

	t.Run("deactivated user stays anonymous", func(t *testing.T) {
		seen = nil
		token, err := tm.Generate(inactive)
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/auth/register", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(okHandler())

	withUser := func(u *models.User) *http.Request {
		req := httptest.NewRequest("DELETE", "/assets/1", nil)
		return req.WithContext(auth.WithUser(req.Context(), u))
	}

	t.Run("no principal gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/assets/1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong role gets 403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withUser(&models.User{ID: primitive.NewObjectID(), Role: models.RoleOfficer}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("allowed role passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withUser(&models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("elevated shorthand", func(t *testing.T) {
		eh := Elevated()(okHandler())
		rec := httptest.NewRecorder()
		eh.ServeHTTP(rec, withUser(&models.User{ID: primitive.NewObjectID(), Role: models.RoleOfficer}))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		eh.ServeHTTP(rec, withUser(&models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
