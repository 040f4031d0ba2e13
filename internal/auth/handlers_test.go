package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

type fakeStore struct {
	repo.Store
	byID       map[primitive.ObjectID]*models.User
	byUsername map[string]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:       map[primitive.ObjectID]*models.User{},
		byUsername: map[string]*models.User{},
	}
}

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	if _, taken := f.byUsername[u.Username]; taken {
		return apperr.Conflict("username already taken")
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	f.byUsername[u.Username] = u
	return nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.byUsername[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperr.NotFound("user not found")
}

func doJSON(h http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterThenLogin(t *testing.T) {
	store := newFakeStore()
	tm := NewTokenManager("test-secret", time.Hour)

	rec := doJSON(RegisterHandler(store, tm), "POST", "/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","username":"Ada","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Token string            `json:"token"`
		User  models.PublicView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "ada", created.User.Username)
	// Anonymous registration never grants more than member.
	assert.Equal(t, models.RoleMember, created.User.Role)
	// The hash is never serialized.
	assert.NotContains(t, rec.Body.String(), "hunter22")
	assert.NotContains(t, rec.Body.String(), "argon2id")

	rec = doJSON(LoginHandler(store, tm), "POST", "/auth/login",
		`{"username":"ADA","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var logged struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logged))
	claims, err := tm.Validate(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID.Hex(), claims.UserID)
}

func TestRegisterIgnoresRoleEscalation(t *testing.T) {
	store := newFakeStore()
	tm := NewTokenManager("test-secret", time.Hour)

	rec := doJSON(RegisterHandler(store, tm), "POST", "/auth/register",
		`{"firstName":"Eve","lastName":"Intruder","username":"eve","password":"secret1","role":"admin"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.RoleMember, store.byUsername["eve"].Role)
}

func TestRegisterAdminGrantsRole(t *testing.T) {
	store := newFakeStore()
	tm := NewTokenManager("test-secret", time.Hour)
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin, Active: true}

	register := func(caller *models.User, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
		if caller != nil {
			req = req.WithContext(WithUser(req.Context(), caller))
		}
		rec := httptest.NewRecorder()
		RegisterHandler(store, tm)(rec, req)
		return rec
	}

	rec := register(admin,
		`{"firstName":"Olu","lastName":"Officer","username":"olu","password":"secret1","role":"officer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.RoleOfficer, store.byUsername["olu"].Role)

	// A non-admin caller in context grants nothing.
	officer := store.byUsername["olu"]
	rec = register(officer,
		`{"firstName":"Mia","lastName":"Member","username":"mia","password":"secret1","role":"admin"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.RoleMember, store.byUsername["mia"].Role)

	// An admin sending a nonsense role is rejected outright.
	rec = register(admin,
		`{"firstName":"Bad","lastName":"Role","username":"badrole","password":"secret1","role":"superuser"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeStore()
	tm := NewTokenManager("test-secret", time.Hour)
	h := RegisterHandler(store, tm)

	cases := []string{
		`{"firstName":"","lastName":"L","username":"okname","password":"secret1"}`,
		`{"firstName":"F","lastName":"L","username":"ab","password":"secret1"}`,
		`{"firstName":"F","lastName":"L","username":"okname","password":"short"}`,
	}
	for _, body := range cases {
		rec := doJSON(h, "POST", "/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newFakeStore()
	tm := NewTokenManager("test-secret", time.Hour)
	h := RegisterHandler(store, tm)

	body := `{"firstName":"A","lastName":"B","username":"taken","password":"secret1"}`
	rec := doJSON(h, "POST", "/auth/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(h, "POST", "/auth/register", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	store := newFakeStore()
	tm := NewTokenManager("test-secret", time.Hour)
	reg := RegisterHandler(store, tm)
	login := LoginHandler(store, tm)

	doJSON(reg, "POST", "/auth/register",
		`{"firstName":"A","lastName":"B","username":"known","password":"secret1"}`)

	unknown := doJSON(login, "POST", "/auth/login", `{"username":"nobody","password":"secret1"}`)
	wrongpw := doJSON(login, "POST", "/auth/login", `{"username":"known","password":"wrong!!"}`)

	// Unknown user and wrong password are indistinguishable.
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongpw.Code)
	assert.JSONEq(t, unknown.Body.String(), wrongpw.Body.String())
}

func TestLoginInactiveAccount(t *testing.T) {
	store := newFakeStore()
	tm := NewTokenManager("test-secret", time.Hour)
	doJSON(RegisterHandler(store, tm), "POST", "/auth/register",
		`{"firstName":"A","lastName":"B","username":"benched","password":"secret1"}`)
	store.byUsername["benched"].Active = false

	rec := doJSON(LoginHandler(store, tm), "POST", "/auth/login",
		`{"username":"benched","password":"secret1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
