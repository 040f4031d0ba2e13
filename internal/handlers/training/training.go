// Package training serves member training records and their approval
// workflow. Approving a record can mint a linked certificate.
package training

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

func (h *Handler) expand(r *http.Request, items []models.TrainingRecord) error {
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].UserID)
	}
	refs, err := h.store.UserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range items {
		if ref, ok := refs[items[i].UserID]; ok {
			items[i].Trainee = &ref
		}
	}
	return nil
}

// GET /training?userId=&status=&mine=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	q := r.URL.Query()
	f := repo.TrainingFilter{Status: models.TrainingStatus(q.Get("status"))}
	if v := q.Get("userId"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.UserID = id
	}
	if q.Get("mine") == "true" || !u.Role.Elevated() {
		f.UserID = u.ID
	}
	items, err := h.store.ListTraining(r.Context(), f)
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

// GET /training/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t, err := h.store.GetTraining(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, t.UserID) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	items := []models.TrainingRecord{*t}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type trainingRequest struct {
	UserID      *string    `json:"userId"`
	Course      *string    `json:"course"`
	Provider    *string    `json:"provider"`
	CompletedOn *time.Time `json:"completedOn"`
	Hours       *float64   `json:"hours"`
}

func (req *trainingRequest) apply(t *models.TrainingRecord, caller *models.User) error {
	if req.UserID != nil {
		id, err := repo.ParseID(*req.UserID)
		if err != nil {
			return apperr.Validation("invalid userId")
		}
		if id != caller.ID && !caller.Role.Elevated() {
			return apperr.Unauthorized("cannot manage another member's training")
		}
		t.UserID = id
	}
	if req.Course != nil {
		if strings.TrimSpace(*req.Course) == "" {
			return apperr.Validation("course cannot be empty")
		}
		t.Course = strings.TrimSpace(*req.Course)
	}
	if req.Provider != nil {
		t.Provider = *req.Provider
	}
	if req.CompletedOn != nil {
		t.CompletedOn = *req.CompletedOn
	}
	if req.Hours != nil {
		if *req.Hours < 0 {
			return apperr.Validation("hours cannot be negative")
		}
		t.Hours = *req.Hours
	}
	return nil
}

// POST /training
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req trainingRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.Course == nil || req.CompletedOn == nil {
		httpserver.Error(w, r, apperr.Validation("course and completedOn are required"))
		return
	}
	t := &models.TrainingRecord{UserID: u.ID, Status: models.TrainingPendingApproval}
	if err := req.apply(t, u); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.CreateTraining(r.Context(), t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.TrainingRecord{*t}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /training/{id}
// Only pending records are editable; a decided record is frozen.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t, err := h.store.GetTraining(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, t.UserID) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	if t.Status != models.TrainingPendingApproval {
		httpserver.Error(w, r, apperr.Conflict("record already decided"))
		return
	}
	var req trainingRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if err := req.apply(t, u); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.UpdateTraining(r.Context(), t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.TrainingRecord{*t}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// PATCH /training/{id}/approve (officer+; enforced in the router)
// Body may carry an optional certificate expiry; when present, approval
// also mints a certificate linked back to the record.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t, err := h.store.GetTraining(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if t.Status != models.TrainingPendingApproval {
		httpserver.Error(w, r, apperr.Conflict("record already decided"))
		return
	}
	var body struct {
		CertificateExpiry *time.Time `json:"certificateExpiry"`
	}
	if r.ContentLength > 0 {
		if err := httpserver.Decode(w, r, &body); err != nil {
			httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
			return
		}
	}
	t.Status = models.TrainingApproved
	t.DecidedBy = u.ID
	if body.CertificateExpiry != nil {
		cert := &models.Certificate{
			UserID:     t.UserID,
			Name:       t.Course,
			IssuedDate: t.CompletedOn,
			ExpiryDate: *body.CertificateExpiry,
			Status:     models.ExpiryStatus(derive.ExpiryStatus(*body.CertificateExpiry, time.Now())),
		}
		if err := h.store.CreateCertificate(r.Context(), cert); err != nil {
			httpserver.Error(w, r, err)
			return
		}
		t.CertificateID = cert.ID
	}
	if err := h.store.UpdateTraining(r.Context(), t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.TrainingRecord{*t}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// PATCH /training/{id}/reject (officer+; enforced in the router)
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	t, err := h.store.GetTraining(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if t.Status != models.TrainingPendingApproval {
		httpserver.Error(w, r, apperr.Conflict("record already decided"))
		return
	}
	t.Status = models.TrainingRejected
	t.DecidedBy = u.ID
	if err := h.store.UpdateTraining(r.Context(), t); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.TrainingRecord{*t}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// DELETE /training/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if _, err := h.store.GetTraining(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteTraining(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
