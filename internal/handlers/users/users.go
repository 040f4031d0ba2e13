// Package users serves the member directory and admin user management.
package users

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
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

// GET /users?role=&search=&includeInactive=true
// The directory is visible to every authenticated member; it exposes
// only public fields.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	q := r.URL.Query()
	f := repo.UserFilter{
		Role:   models.Role(q.Get("role")),
		Search: q.Get("search"),
	}
	// Deactivated accounts are an admin concern.
	if q.Get("includeInactive") == "true" && u.Role == models.RoleAdmin {
		f.IncludeInactive = true
	}
	users, err := h.store.ListUsers(r.Context(), f)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	views := make([]models.PublicView, len(users))
	for i := range users {
		views[i] = users[i].Public()
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": views})
}

// GET /users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	u, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, u.Public())
}

// PUT /users/{id} (admin; enforced in the router)
// Admin edit of another account: names, role, active flag, password
// reset. An admin cannot deactivate or demote themselves.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	u, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	var body struct {
		FirstName *string      `json:"firstName"`
		LastName  *string      `json:"lastName"`
		Role      *models.Role `json:"role"`
		Active    *bool        `json:"active"`
		Password  *string      `json:"password"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if body.FirstName != nil {
		if strings.TrimSpace(*body.FirstName) == "" {
			httpserver.Error(w, r, apperr.Validation("first name cannot be empty"))
			return
		}
		u.FirstName = strings.TrimSpace(*body.FirstName)
	}
	if body.LastName != nil {
		if strings.TrimSpace(*body.LastName) == "" {
			httpserver.Error(w, r, apperr.Validation("last name cannot be empty"))
			return
		}
		u.LastName = strings.TrimSpace(*body.LastName)
	}
	if body.Role != nil {
		if !body.Role.Valid() {
			httpserver.Error(w, r, apperr.Validation("unknown role"))
			return
		}
		if u.ID == caller.ID && *body.Role != models.RoleAdmin {
			httpserver.Error(w, r, apperr.Conflict("cannot demote yourself"))
			return
		}
		u.Role = *body.Role
	}
	if body.Active != nil {
		if u.ID == caller.ID && !*body.Active {
			httpserver.Error(w, r, apperr.Conflict("cannot deactivate yourself"))
			return
		}
		u.Active = *body.Active
	}
	if body.Password != nil {
		if len(*body.Password) < 6 {
			httpserver.Error(w, r, apperr.Validation("password must be at least 6 characters"))
			return
		}
		phc, err := auth.HashPassword(*body.Password, auth.DefaultArgonParams())
		if err != nil {
			httpserver.Error(w, r, apperr.Internal("hash error", err))
			return
		}
		u.PasswordHash = phc
	}
	if err := h.store.UpdateUser(r.Context(), u); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, u.Public())
}

// DELETE /users/{id} (admin; enforced in the router)
// Self-delete is rejected so a deployment cannot lose its last admin
// by accident.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if id == caller.ID {
		httpserver.Error(w, r, apperr.Conflict("cannot delete your own account"))
		return
	}
	if _, err := h.store.GetUserByID(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
