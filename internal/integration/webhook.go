// Package integration bridges an external dispatch/messaging service
// into the chat store. Inbound webhook posts are authenticated with a
// shared secret, normalized from the several field spellings upstream
// systems use, and written as external messages with provenance.
package integration

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/config"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

const maxWebhookBody = 256 << 10 // 256KB

type Handler struct {
	store repo.Store
	cfg   config.Config
}

func New(store repo.Store, cfg config.Config) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// payload accepts the union of field names used by upstream senders.
// The first non-empty of message/content/text wins, and likewise for
// the sender and source aliases.
type payload struct {
	Message    string         `json:"message"`
	Content    string         `json:"content"`
	Text       string         `json:"text"`
	Sender     string         `json:"sender"`
	SenderName string         `json:"senderName"`
	SenderID   string         `json:"senderId"`
	Source     string         `json:"source"`
	Department string         `json:"department"`
	Timestamp  *time.Time     `json:"timestamp"`
	Metadata   map[string]any `json:"metadata"`
}

func (p payload) body() string {
	for _, s := range []string{p.Message, p.Content, p.Text} {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func (p payload) sender() string {
	if strings.TrimSpace(p.Sender) != "" {
		return strings.TrimSpace(p.Sender)
	}
	return strings.TrimSpace(p.SenderName)
}

func (p payload) source() string {
	if strings.TrimSpace(p.Source) != "" {
		return strings.TrimSpace(p.Source)
	}
	if strings.TrimSpace(p.Department) != "" {
		return strings.TrimSpace(p.Department)
	}
	return "external"
}

// authenticate verifies the request against the configured mode. In
// hmac mode the X-Signature header carries a hex HMAC-SHA256 of the raw
// body, with or without a "sha256=" prefix. In apikey mode X-API-Key is
// compared in constant time.
func (h *Handler) authenticate(r *http.Request, rawBody []byte) error {
	switch h.cfg.Webhook.Mode {
	case "hmac":
		sig := strings.TrimPrefix(r.Header.Get("X-Signature"), "sha256=")
		if sig == "" {
			return apperr.Unauthenticated("missing signature")
		}
		mac := hmac.New(sha256.New, []byte(h.cfg.Webhook.Secret))
		mac.Write(rawBody)
		want := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(strings.ToLower(sig)), []byte(want)) {
			return apperr.Unauthenticated("invalid signature")
		}
	case "apikey":
		key := r.Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(h.cfg.Webhook.Secret)) != 1 {
			return apperr.Unauthenticated("invalid api key")
		}
	default:
		return apperr.Unauthenticated("webhook not configured")
	}
	return nil
}

// Receive handles POST /integration/webhook. No session auth: the
// shared secret is the credential.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.WebhookConfigured() {
		httpserver.Error(w, r, apperr.Unauthenticated("webhook not configured"))
		return
	}
	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httpserver.Error(w, r, apperr.Validation("unreadable body"))
		return
	}
	defer r.Body.Close()
	if err := h.authenticate(r, rawBody); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	var p payload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON"))
		return
	}
	body := p.body()
	if body == "" {
		httpserver.Error(w, r, apperr.Validation("message, content or text required"))
		return
	}

	group := h.cfg.Webhook.Group
	if _, err := h.store.EnsureGroup(r.Context(), group, models.GroupOperations); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	prov := &models.Provenance{
		Source:     p.source(),
		SenderName: p.sender(),
		SenderID:   p.SenderID,
		Metadata:   p.Metadata,
	}
	if p.Timestamp != nil {
		prov.SentAt = *p.Timestamp
	}
	m := &models.Message{
		Body:       body,
		Group:      group,
		External:   true,
		Provenance: prov,
	}
	if err := h.store.CreateMessage(r.Context(), m); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "webhook message accepted",
		"source", prov.Source, "group", group)
	httpserver.JSON(w, http.StatusCreated, map[string]any{"id": m.ID.Hex()})
}

// Status handles GET /integration/status: whether the bridge is
// configured, whether its group exists yet, and the last few external
// messages.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"configured": h.cfg.WebhookConfigured(),
		"mode":       h.cfg.Webhook.Mode,
		"group":      h.cfg.Webhook.Group,
	}
	g, err := h.store.GetGroupByName(r.Context(), h.cfg.Webhook.Group)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			httpserver.Error(w, r, err)
			return
		}
		out["groupExists"] = false
	} else {
		out["groupExists"] = true
		out["groupCreatedAt"] = g.CreatedAt
	}
	recent, err := h.store.ListExternalMessages(r.Context(), h.cfg.Webhook.Group, 10)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	out["recent"] = recent
	httpserver.JSON(w, http.StatusOK, out)
}

// Test handles POST /integration/test (officer+; enforced in the
// router). Injects a marked test message through the same path real
// webhook traffic takes.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.WebhookConfigured() {
		httpserver.Error(w, r, apperr.Conflict("webhook not configured"))
		return
	}
	group := h.cfg.Webhook.Group
	if _, err := h.store.EnsureGroup(r.Context(), group, models.GroupOperations); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	m := &models.Message{
		Body:     "integration test message",
		Group:    group,
		External: true,
		Provenance: &models.Provenance{
			Source:     "self-test",
			SenderName: "apsar-tracker",
			SentAt:     time.Now(),
		},
	}
	if err := h.store.CreateMessage(r.Context(), m); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, map[string]any{"id": m.ID.Hex()})
}
