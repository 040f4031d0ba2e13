package maintenance

import (
	"net/http"
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
)

type Handler struct {
	store repo.Store
}

func New(store repo.Store) *Handler {
	return &Handler{store: store}
}

// decorate fills the derived overdue flag and creator refs.
func (h *Handler) decorate(r *http.Request, items []models.MaintenanceRecord) error {
	now := time.Now()
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		items[i].Overdue = derive.Overdue(items[i].Status.Active(), items[i].DueDate, now)
		ids = append(ids, items[i].CreatedBy)
	}
	refs, err := h.store.UserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range items {
		if ref, ok := refs[items[i].CreatedBy]; ok {
			items[i].Creator = &ref
		}
	}
	return nil
}

// GET /maintenance?status=&assetId=&dueFrom=&dueTo=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.MaintenanceFilter{Status: models.MaintenanceStatus(q.Get("status"))}
	if v := q.Get("assetId"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.AssetID = id
	}
	if v := q.Get("dueFrom"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpserver.Error(w, r, apperr.Validation("dueFrom must be RFC3339"))
			return
		}
		f.DueFrom = t
	}
	if v := q.Get("dueTo"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpserver.Error(w, r, apperr.Validation("dueTo must be RFC3339"))
			return
		}
		f.DueTo = t
	}
	items, err := h.store.ListMaintenance(r.Context(), f)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// GET /maintenance/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	m, err := h.store.GetMaintenance(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.MaintenanceRecord{*m}
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type maintenanceRequest struct {
	AssetID     *string                   `json:"assetId"`
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Status      *models.MaintenanceStatus `json:"status"`
	DueDate     *time.Time                `json:"dueDate"`
	Checklist   *[]models.ChecklistItem   `json:"checklist"`
	PartsUsed   *[]models.PartUsed        `json:"partsUsed"`
}

func (req *maintenanceRequest) apply(m *models.MaintenanceRecord) error {
	if req.AssetID != nil {
		id, err := repo.ParseID(*req.AssetID)
		if err != nil {
			return apperr.Validation("invalid assetId")
		}
		m.AssetID = id
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return apperr.Validation("title cannot be empty")
		}
		m.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case models.MaintenanceScheduled, models.MaintenanceInProgress,
			models.MaintenanceCompleted, models.MaintenanceCancelled:
		default:
			return apperr.Validation("unknown status")
		}
		if *req.Status == models.MaintenanceCompleted && m.Status != models.MaintenanceCompleted {
			m.CompletedAt = time.Now()
		}
		m.Status = *req.Status
	}
	if req.DueDate != nil {
		m.DueDate = *req.DueDate
	}
	if req.Checklist != nil {
		m.Checklist = *req.Checklist
	}
	if req.PartsUsed != nil {
		m.PartsUsed = *req.PartsUsed
	}
	// Total cost is always recomputed from the line items, never trusted
	// from the client.
	m.TotalCost = models.PartsTotal(m.PartsUsed)
	return nil
}

// POST /maintenance
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req maintenanceRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.AssetID == nil || req.Title == nil || req.DueDate == nil {
		httpserver.Error(w, r, apperr.Validation("assetId, title and dueDate are required"))
		return
	}
	m := &models.MaintenanceRecord{Status: models.MaintenanceScheduled, CreatedBy: u.ID}
	if err := req.apply(m); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.CreateMaintenance(r.Context(), m); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.MaintenanceRecord{*m}
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /maintenance/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	m, err := h.store.GetMaintenance(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, m.CreatedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	var req maintenanceRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if err := req.apply(m); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.UpdateMaintenance(r.Context(), m); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.MaintenanceRecord{*m}
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// PATCH /maintenance/{id}/complete
// Marks the record completed and stamps the completion time.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	m, err := h.store.GetMaintenance(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, m.CreatedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	if !m.Status.Active() {
		httpserver.Error(w, r, apperr.Conflict("record is not active"))
		return
	}
	m.Status = models.MaintenanceCompleted
	m.CompletedAt = time.Now()
	m.TotalCost = models.PartsTotal(m.PartsUsed)
	if err := h.store.UpdateMaintenance(r.Context(), m); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.MaintenanceRecord{*m}
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// DELETE /maintenance/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if _, err := h.store.GetMaintenance(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteMaintenance(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
