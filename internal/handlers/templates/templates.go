// Package templates serves the three reusable template collections
// (checklist, maintenance, work order) that share one document shape,
// plus the completed-checklist instances filled in from them.
package templates

import (
	"context"
	"net/http"
	"strings"

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

type ctxKeyKind struct{}

// WithKind tags requests with the template kind for the mounted prefix.
// The three collections (/checklist-templates, /maintenance-templates,
// /work-order-templates) share one handler set.
func WithKind(k models.TemplateKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyKind{}, k)))
		})
	}
}

func kindFrom(r *http.Request) models.TemplateKind {
	if k, ok := r.Context().Value(ctxKeyKind{}).(models.TemplateKind); ok {
		return k
	}
	return models.TemplateChecklist
}

// GET /{kind}-templates?category=&includeInactive=true
// Inactive templates are an elevated-roles concern.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	q := r.URL.Query()
	f := repo.TemplateFilter{
		Kind:            kindFrom(r),
		Category:        q.Get("category"),
		IncludeInactive: q.Get("includeInactive") == "true" && u.Role.Elevated(),
	}
	items, err := h.store.ListTemplates(r.Context(), f)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// GET /{kind}-templates/{id}
// Inactive templates stay readable by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, t)
}

type templateRequest struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Category    *string                 `json:"category"`
	Items       *[]models.ChecklistItem `json:"items"`
	Active      *bool                   `json:"active"`
}

func (req *templateRequest) apply(t *models.Template) error {
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return apperr.Validation("name cannot be empty")
		}
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Items != nil {
		items := *req.Items
		for i := range items {
			if strings.TrimSpace(items[i].Text) == "" {
				return apperr.Validation("item text cannot be empty")
			}
			// Template lines are definitions, never pre-completed.
			items[i].Completed = false
		}
		t.Items = items
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	return nil
}

// POST /{kind}-templates
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req templateRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.Name == nil || req.Items == nil || len(*req.Items) == 0 {
		httpserver.Error(w, r, apperr.Validation("name and at least one item are required"))
		return
	}
	t := &models.Template{
		Kind:      kindFrom(r),
		Active:    true,
		CreatedBy: u.ID,
	}
	if err := req.apply(t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.CreateTemplate(r.Context(), t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, t)
}

// PUT /{kind}-templates/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, t.CreatedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	var req templateRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if err := req.apply(t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.UpdateTemplate(r.Context(), t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, t)
}

// DELETE /{kind}-templates/{id} (admin; enforced in the router)
// Soft delete: the template is deactivated, not removed, so completed
// checklists keep a resolvable reference.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t.Active = false
	if err := h.store.UpdateTemplate(r.Context(), t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /{kind}-templates/{id}/use
// Bumps the usage counter atomically and returns a fresh instance of
// the template's items for the client to fill in.
func (h *Handler) Use(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !t.Active {
		httpserver.Error(w, r, apperr.Conflict("template is inactive"))
		return
	}
	if err := h.store.IncrementTemplateUsage(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t.UsageCount++
	httpserver.JSON(w, http.StatusOK, t)
}
