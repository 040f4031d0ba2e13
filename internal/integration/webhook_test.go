package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/config"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

type fakeStore struct {
	repo.Store
	groups   map[string]*models.ChatGroup
	messages []*models.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{groups: map[string]*models.ChatGroup{}}
}

func (f *fakeStore) EnsureGroup(_ context.Context, name string, typ models.GroupType) (*models.ChatGroup, error) {
	if g, ok := f.groups[name]; ok {
		return g, nil
	}
	g := &models.ChatGroup{Name: name, Type: typ}
	f.groups[name] = g
	return g, nil
}

func (f *fakeStore) GetGroupByName(_ context.Context, name string) (*models.ChatGroup, error) {
	if g, ok := f.groups[name]; ok {
		return g, nil
	}
	return nil, apperr.NotFound("group not found")
}

func (f *fakeStore) CreateMessage(_ context.Context, m *models.Message) error {
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeStore) ListExternalMessages(_ context.Context, group string, limit int64) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if m.Group == group && m.External {
			out = append(out, *m)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func hmacConfig(secret string) config.Config {
	var cfg config.Config
	cfg.Webhook.Mode = "hmac"
	cfg.Webhook.Secret = secret
	cfg.Webhook.Group = "dispatch"
	return cfg
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func post(h *Handler, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/integration/webhook", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func TestWebhookValidSignature(t *testing.T) {
	store := newFakeStore()
	h := New(store, hmacConfig("shh"))
	body := []byte(`{"message":"Team callout at grid ref 123","sender":"Dispatch","source":"pager","metadata":{"priority":"high"}}`)

	rec := post(h, body, map[string]string{"X-Signature": sign("shh", body)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, store.messages, 1)
	m := store.messages[0]
	assert.Equal(t, "Team callout at grid ref 123", m.Body)
	assert.True(t, m.External)
	assert.True(t, m.SenderID.IsZero())
	assert.Equal(t, "dispatch", m.Group)
	require.NotNil(t, m.Provenance)
	assert.Equal(t, "pager", m.Provenance.Source)
	assert.Equal(t, "Dispatch", m.Provenance.SenderName)
	assert.Equal(t, "high", m.Provenance.Metadata["priority"])
}

func TestWebhookSignaturePrefix(t *testing.T) {
	store := newFakeStore()
	h := New(store, hmacConfig("shh"))
	body := []byte(`{"content":"prefixed"}`)

	rec := post(h, body, map[string]string{"X-Signature": "sha256=" + sign("shh", body)})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWebhookBadSignature(t *testing.T) {
	store := newFakeStore()
	h := New(store, hmacConfig("shh"))
	body := []byte(`{"message":"nope"}`)

	rec := post(h, body, map[string]string{"X-Signature": sign("wrong-secret", body)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.messages)

	rec = post(h, body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookAPIKeyMode(t *testing.T) {
	store := newFakeStore()
	var cfg config.Config
	cfg.Webhook.Mode = "apikey"
	cfg.Webhook.Secret = "key-123"
	cfg.Webhook.Group = "dispatch"
	h := New(store, cfg)
	body := []byte(`{"text":"via api key"}`)

	rec := post(h, body, map[string]string{"X-API-Key": "key-123"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = post(h, body, map[string]string{"X-API-Key": "key-456"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookFieldAliases(t *testing.T) {
	store := newFakeStore()
	h := New(store, hmacConfig("shh"))

	for _, body := range [][]byte{
		[]byte(`{"message":"m"}`),
		[]byte(`{"content":"m"}`),
		[]byte(`{"text":"m"}`),
	} {
		rec := post(h, body, map[string]string{"X-Signature": sign("shh", body)})
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Len(t, store.messages, 3)
	for _, m := range store.messages {
		assert.Equal(t, "m", m.Body)
	}
}

func TestWebhookMissingContent(t *testing.T) {
	store := newFakeStore()
	h := New(store, hmacConfig("shh"))
	body := []byte(`{"sender":"Dispatch"}`)

	rec := post(h, body, map[string]string{"X-Signature": sign("shh", body)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.messages)
}

func TestWebhookGroupIsIdempotent(t *testing.T) {
	store := newFakeStore()
	h := New(store, hmacConfig("shh"))

	for i := 0; i < 3; i++ {
		body := []byte(`{"message":"again"}`)
		rec := post(h, body, map[string]string{"X-Signature": sign("shh", body)})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Len(t, store.groups, 1)
	assert.Len(t, store.messages, 3)
}

func TestWebhookNotConfigured(t *testing.T) {
	store := newFakeStore()
	h := New(store, config.Config{})
	rec := post(h, []byte(`{"message":"m"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusReportsRecentMessages(t *testing.T) {
	store := newFakeStore()
	h := New(store, hmacConfig("shh"))
	body := []byte(`{"message":"first"}`)
	post(h, body, map[string]string{"X-Signature": sign("shh", body)})

	req := httptest.NewRequest("GET", "/integration/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"configured":true`)
	assert.Contains(t, rec.Body.String(), `"groupExists":true`)
	assert.Contains(t, rec.Body.String(), "first")
}
