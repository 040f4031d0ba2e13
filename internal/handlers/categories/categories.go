// Package categories serves the admin-managed lookup values used by
// assets and templates.
package categories

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

type Handler struct {
	store repo.Store
}

func New(store repo.Store) *Handler {
	return &Handler{store: store}
}

// GET /categories?kind=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListCategories(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// POST /categories (officer+; enforced in the router)
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		httpserver.Error(w, r, apperr.Validation("name is required"))
		return
	}
	switch body.Kind {
	case "asset", "maintenance", "checklist":
	default:
		httpserver.Error(w, r, apperr.Validation("kind must be asset, maintenance or checklist"))
		return
	}
	c := &models.Category{Name: body.Name, Kind: body.Kind}
	if err := h.store.CreateCategory(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, c)
}

// DELETE /categories/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
