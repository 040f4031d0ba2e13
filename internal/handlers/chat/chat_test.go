package chat

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
	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

type fakeStore struct {
	repo.Store
	users    map[primitive.ObjectID]*models.User
	groups   map[string]*models.ChatGroup
	messages []models.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[primitive.ObjectID]*models.User{},
		groups: map[string]*models.ChatGroup{},
	}
}

func (f *fakeStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeStore) EnsureGroup(_ context.Context, name string, typ models.GroupType) (*models.ChatGroup, error) {
	if g, ok := f.groups[name]; ok {
		return g, nil
	}
	g := &models.ChatGroup{ID: primitive.NewObjectID(), Name: name, Type: typ, CreatedAt: time.Now()}
	f.groups[name] = g
	return g, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, m *models.Message) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeStore) UserRefs(_ context.Context, _ []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	return map[primitive.ObjectID]models.UserRef{}, nil
}

func send(h *Handler, u *models.User, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/chat/messages", strings.NewReader(body))
	req = req.WithContext(auth.WithUser(req.Context(), u))
	rec := httptest.NewRecorder()
	h.Send(rec, req)
	return rec
}

func TestSendDirectMessage(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	sender := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}
	other := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}
	store.users[other.ID] = other

	rec := send(h, sender, `{"body":"on my way","recipientId":"`+other.ID.Hex()+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, sender.ID, out.SenderID)
	assert.Equal(t, other.ID, out.RecipientID)
	assert.Empty(t, out.Group)
	assert.False(t, out.External)
}

func TestSendDirectUnknownRecipient(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	sender := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}

	rec := send(h, sender, `{"body":"hi","recipientId":"`+primitive.NewObjectID().Hex()+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendGroupCreatesGroupLazily(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	sender := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}

	for i := 0; i < 3; i++ {
		rec := send(h, sender, `{"body":"check","group":"ops"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	assert.Len(t, store.groups, 1)
	assert.Len(t, store.messages, 3)
	assert.Equal(t, "ops", store.messages[0].Group)
}

func TestBroadcastRequiresElevatedRole(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	member := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}
	officer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleOfficer}

	rec := send(h, member, `{"body":"all stations","broadcast":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.messages)

	rec = send(h, officer, `{"body":"all stations","broadcast":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.messages, 1)
	assert.True(t, store.messages[0].Broadcast)
}

func TestSendValidation(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}

	rec := send(h, u, `{"body":"   ","group":"ops"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(h, u, `{"body":"no destination"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
