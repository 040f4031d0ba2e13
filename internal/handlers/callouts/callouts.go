// Package callouts serves incident callouts, responder check-in and
// check-out, and the attached incident reports with their forward-only
// review workflow.
package callouts

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/derive"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/httpctx"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/uploads"
)

type Handler struct {
	store repo.Store
	files *uploads.Store
}

func New(store repo.Store, files *uploads.Store) *Handler {
	return &Handler{store: store, files: files}
}

func (h *Handler) expand(r *http.Request, items []models.Callout) error {
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].CreatedBy)
		for _, resp := range items[i].Responders {
			ids = append(ids, resp.UserID)
		}
	}
	refs, err := h.store.UserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range items {
		if ref, ok := refs[items[i].CreatedBy]; ok {
			items[i].Creator = &ref
		}
		for j := range items[i].Responders {
			if ref, ok := refs[items[i].Responders[j].UserID]; ok {
				items[i].Responders[j].User = &ref
			}
		}
	}
	return nil
}

// GET /callouts?status=&year=&search=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.CalloutFilter{
		Status: models.CalloutStatus(q.Get("status")),
		Search: q.Get("search"),
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			httpserver.Error(w, r, apperr.Validation("year must be a number"))
			return
		}
		f.Year = year
	}
	items, err := h.store.ListCallouts(r.Context(), f)
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

// GET /callouts/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCallout(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Callout{*c}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type calloutRequest struct {
	Title     *string               `json:"title"`
	Details   *string               `json:"details"`
	Location  *string               `json:"location"`
	Status    *models.CalloutStatus `json:"status"`
	StartedAt *time.Time            `json:"startedAt"`
	EndedAt   *time.Time            `json:"endedAt"`
}

func (req *calloutRequest) apply(c *models.Callout) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return apperr.Validation("title cannot be empty")
		}
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Details != nil {
		c.Details = *req.Details
	}
	if req.Location != nil {
		c.Location = *req.Location
	}
	if req.Status != nil {
		switch *req.Status {
		case models.CalloutActive, models.CalloutStoodDown, models.CalloutClosed:
		default:
			return apperr.Validation("unknown status")
		}
		if *req.Status != models.CalloutActive && c.Status == models.CalloutActive && c.EndedAt.IsZero() {
			c.EndedAt = time.Now()
		}
		c.Status = *req.Status
	}
	if req.StartedAt != nil {
		c.StartedAt = *req.StartedAt
	}
	if req.EndedAt != nil {
		c.EndedAt = *req.EndedAt
	}
	if !c.EndedAt.IsZero() && c.EndedAt.Before(c.StartedAt) {
		return apperr.Validation("endedAt cannot precede startedAt")
	}
	return nil
}

// POST /callouts
// Number CO-<year>-<seq> is issued from the atomic per-year counter.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req calloutRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.Title == nil {
		httpserver.Error(w, r, apperr.Validation("title is required"))
		return
	}
	c := &models.Callout{
		Status:    models.CalloutActive,
		StartedAt: time.Now(),
		CreatedBy: u.ID,
	}
	if err := req.apply(c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	year := c.StartedAt.Year()
	seq, err := h.store.NextSequence(r.Context(), "CO", year)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c.Number = derive.FormatSequential("CO", year, seq)
	if err := h.store.CreateCallout(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Callout{*c}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /callouts/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCallout(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, c.CreatedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	var req calloutRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if err := req.apply(c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.UpdateCallout(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Callout{*c}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// DELETE /callouts/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if _, err := h.store.GetCallout(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteCallout(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /callouts/{id}/check-in
// Re-checking in while already checked in is a no-op, not an error.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCallout(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if c.Status != models.CalloutActive {
		httpserver.Error(w, r, apperr.Conflict("callout is not active"))
		return
	}
	found := false
	for i := range c.Responders {
		if c.Responders[i].UserID == u.ID {
			found = true
			if c.Responders[i].CheckedIn.IsZero() {
				c.Responders[i].CheckedIn = time.Now()
			}
			break
		}
	}
	if !found {
		c.Responders = append(c.Responders, models.Responder{UserID: u.ID, CheckedIn: time.Now()})
	}
	if err := h.store.UpdateCallout(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Callout{*c}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// POST /callouts/{id}/check-out
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCallout(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	for i := range c.Responders {
		if c.Responders[i].UserID == u.ID {
			if c.Responders[i].CheckedIn.IsZero() {
				break
			}
			if c.Responders[i].CheckedOut.IsZero() {
				c.Responders[i].CheckedOut = time.Now()
			}
			if err := h.store.UpdateCallout(r.Context(), c); err != nil {
				httpserver.Error(w, r, err)
				return
			}
			items := []models.Callout{*c}
			if err := h.expand(r, items); err != nil {
				httpserver.Error(w, r, err)
				return
			}
			httpserver.JSON(w, http.StatusOK, items[0])
			return
		}
	}
	httpserver.Error(w, r, apperr.Conflict("not checked in"))
}
