// Package notifications serves the per-user notification feed. Expired
// notifications are excluded from every query; marking one read is
// scoped to the owner so ids cannot be probed across users.
package notifications

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/httpctx"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

type Handler struct {
	store repo.Store
}

func New(store repo.Store) *Handler {
	return &Handler{store: store}
}

// GET /notifications?includeRead=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	includeRead := r.URL.Query().Get("includeRead") == "true"
	items, err := h.store.ListNotifications(r.Context(), u.ID, includeRead, time.Now())
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// GET /notifications/unread-count
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	n, err := h.store.UnreadCount(r.Context(), u.ID, time.Now())
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"count": n})
}

// PATCH /notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.MarkNotificationRead(r.Context(), id, u.ID, time.Now()); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PATCH /notifications/read-all
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	if err := h.store.MarkAllNotificationsRead(r.Context(), u.ID, time.Now()); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /notifications (officer+; enforced in the router)
// Sends a notification to the named users, or to everyone active when
// broadcast is set.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserIDs   []string                `json:"userIds"`
		Broadcast bool                    `json:"broadcast"`
		Type      models.NotificationType `json:"type"`
		Title     string                  `json:"title"`
		Body      string                  `json:"body"`
		ExpiresAt *time.Time              `json:"expiresAt"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if body.Title == "" {
		httpserver.Error(w, r, apperr.Validation("title is required"))
		return
	}
	if body.Type == "" {
		body.Type = models.NotifyInfo
	}
	targets := make([]models.Notification, 0, len(body.UserIDs))
	if body.Broadcast {
		users, err := h.store.ListUsers(r.Context(), repo.UserFilter{})
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		for _, u := range users {
			targets = append(targets, models.Notification{UserID: u.ID})
		}
	} else {
		if len(body.UserIDs) == 0 {
			httpserver.Error(w, r, apperr.Validation("userIds or broadcast required"))
			return
		}
		for _, hex := range body.UserIDs {
			id, err := repo.ParseID(hex)
			if err != nil {
				httpserver.Error(w, r, apperr.Validation("invalid user id"))
				return
			}
			targets = append(targets, models.Notification{UserID: id})
		}
	}
	created := 0
	for i := range targets {
		n := &models.Notification{
			UserID: targets[i].UserID,
			Type:   body.Type,
			Title:  body.Title,
			Body:   body.Body,
		}
		if body.ExpiresAt != nil {
			n.ExpiresAt = *body.ExpiresAt
		}
		if err := h.store.CreateNotification(r.Context(), n); err != nil {
			httpserver.Error(w, r, err)
			return
		}
		created++
	}
	httpserver.JSON(w, http.StatusCreated, map[string]any{"created": created})
}
