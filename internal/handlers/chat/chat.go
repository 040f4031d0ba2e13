// Package chat serves direct and group messaging over one message
// collection. Groups are created lazily on first use; the webhook
// bridge posts into the same collection with External set.
package chat

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/httpctx"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

const defaultHistoryLimit = 100

type Handler struct {
	store repo.Store
}

func New(store repo.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) expand(r *http.Request, items []models.Message) error {
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		if !items[i].SenderID.IsZero() {
			ids = append(ids, items[i].SenderID)
		}
	}
	refs, err := h.store.UserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range items {
		if ref, ok := refs[items[i].SenderID]; ok {
			items[i].Sender = &ref
		}
	}
	return nil
}

func parseLimit(r *http.Request) int64 {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return defaultHistoryLimit
}

// GET /chat/messages?group=<name>&limit=
// GET /chat/messages?userId=<id>&limit=  (direct conversation with the caller)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	q := r.URL.Query()
	f := repo.MessageFilter{Limit: parseLimit(r)}
	switch {
	case q.Get("group") != "":
		f.Group = q.Get("group")
	case q.Get("userId") != "":
		other, err := repo.ParseID(q.Get("userId"))
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.Direct = true
		f.Principal = u.ID
		f.Other = other
	default:
		httpserver.Error(w, r, apperr.Validation("group or userId required"))
		return
	}
	items, err := h.store.ListMessages(r.Context(), f)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// POST /chat/messages
// Body: { "body": "...", "recipientId": "..." } for direct,
// { "body": "...", "group": "ops" } for group, or
// { "body": "...", "broadcast": true } (officer+).
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var body struct {
		Body        string `json:"body"`
		RecipientID string `json:"recipientId"`
		Group       string `json:"group"`
		Broadcast   bool   `json:"broadcast"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	text := strings.TrimSpace(body.Body)
	if text == "" {
		httpserver.Error(w, r, apperr.Validation("body required"))
		return
	}
	m := &models.Message{Body: text, SenderID: u.ID}
	switch {
	case body.Broadcast:
		if !u.Role.Elevated() {
			httpserver.Error(w, r, apperr.Unauthorized("only officers may broadcast"))
			return
		}
		m.Broadcast = true
	case body.RecipientID != "":
		other, err := repo.ParseID(body.RecipientID)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		if _, err := h.store.GetUserByID(r.Context(), other); err != nil {
			httpserver.Error(w, r, err)
			return
		}
		m.RecipientID = other
	case body.Group != "":
		name := strings.TrimSpace(body.Group)
		if _, err := h.store.EnsureGroup(r.Context(), name, models.GroupGeneral); err != nil {
			httpserver.Error(w, r, err)
			return
		}
		m.Group = name
	default:
		httpserver.Error(w, r, apperr.Validation("recipientId, group or broadcast required"))
		return
	}
	if err := h.store.CreateMessage(r.Context(), m); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Message{*m}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PATCH /chat/messages/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.MarkMessageRead(r.Context(), id, u.ID); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// DELETE /chat/messages?group=<name> (admin; enforced in the router)
// The monthly cleanup the external scheduler invokes.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("group")
	if name == "" {
		httpserver.Error(w, r, apperr.Validation("group required"))
		return
	}
	if _, err := h.store.GetGroupByName(r.Context(), name); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	n, err := h.store.ClearGroupMessages(r.Context(), name)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"deleted": n})
}
