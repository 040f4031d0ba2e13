package templates

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/derive"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/httpctx"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

// Completed-checklist handlers. Counters and the completion percentage
// are recomputed from the submitted items on every save; client-sent
// values are discarded.

func recompute(c *models.CompletedChecklist) {
	items := make([]derive.Item, len(c.Items))
	for i, it := range c.Items {
		items[i] = derive.Item{Required: it.Required, Completed: it.Completed}
	}
	s := derive.CompletionStats(items)
	c.TotalItems = s.TotalItems
	c.CompletedItems = s.CompletedItems
	c.RequiredItems = s.RequiredItems
	c.CompletedRequired = s.CompletedRequired
	c.CompletionPercent = s.Percentage
	c.Status = s.Status
}

func (h *Handler) expandCompleted(r *http.Request, items []models.CompletedChecklist) error {
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].CompletedBy)
	}
	refs, err := h.store.UserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range items {
		if ref, ok := refs[items[i].CompletedBy]; ok {
			items[i].Completer = &ref
		}
	}
	return nil
}

// GET /completed-checklists?templateId=&assetId=&mine=true
func (h *Handler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f repo.CompletedFilter
	if v := q.Get("templateId"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.TemplateID = id
	}
	if v := q.Get("assetId"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.AssetID = id
	}
	if q.Get("mine") == "true" {
		if uid, ok := httpctx.UserID(r.Context()); ok {
			f.CompletedBy = uid
		}
	}
	items, err := h.store.ListCompletedChecklists(r.Context(), f)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.expandCompleted(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// GET /completed-checklists/{id}
func (h *Handler) GetCompleted(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCompletedChecklist(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.CompletedChecklist{*c}
	if err := h.expandCompleted(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type completedRequest struct {
	TemplateID *string                 `json:"templateId"`
	AssetID    *string                 `json:"assetId"`
	Items      *[]models.ChecklistItem `json:"items"`
}

// POST /completed-checklists
func (h *Handler) CreateCompleted(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req completedRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.TemplateID == nil || req.Items == nil {
		httpserver.Error(w, r, apperr.Validation("templateId and items are required"))
		return
	}
	tmplID, err := repo.ParseID(*req.TemplateID)
	if err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid templateId"))
		return
	}
	if _, err := h.store.GetTemplate(r.Context(), tmplID); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c := &models.CompletedChecklist{
		TemplateID:  tmplID,
		Items:       *req.Items,
		CompletedBy: u.ID,
	}
	if req.AssetID != nil && *req.AssetID != "" {
		id, err := repo.ParseID(*req.AssetID)
		if err != nil {
			httpserver.Error(w, r, apperr.Validation("invalid assetId"))
			return
		}
		c.AssetID = id
	}
	recompute(c)
	if err := h.store.CreateCompletedChecklist(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.CompletedChecklist{*c}
	if err := h.expandCompleted(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /completed-checklists/{id}
func (h *Handler) UpdateCompleted(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCompletedChecklist(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, c.CompletedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	var req completedRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.Items != nil {
		c.Items = *req.Items
	}
	recompute(c)
	if err := h.store.UpdateCompletedChecklist(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.CompletedChecklist{*c}
	if err := h.expandCompleted(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// DELETE /completed-checklists/{id} (admin; enforced in the router)
func (h *Handler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if _, err := h.store.GetCompletedChecklist(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteCompletedChecklist(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
