// Package quotes serves vendor maintenance quotes and their
// approve/reject decision workflow.
package quotes

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

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

func (h *Handler) expand(r *http.Request, items []models.Quote) error {
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		if !items[i].DecidedBy.IsZero() {
			ids = append(ids, items[i].DecidedBy)
		}
	}
	refs, err := h.store.UserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range items {
		if ref, ok := refs[items[i].DecidedBy]; ok {
			items[i].Approver = &ref
		}
	}
	return nil
}

// GET /quotes?status=&assetId=&workOrderId=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.QuoteFilter{Status: models.QuoteStatus(q.Get("status"))}
	if v := q.Get("assetId"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.AssetID = id
	}
	if v := q.Get("workOrderId"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.WorkOrderID = id
	}
	items, err := h.store.ListQuotes(r.Context(), f)
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

// GET /quotes/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	qt, err := h.store.GetQuote(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Quote{*qt}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type quoteRequest struct {
	Vendor      *string  `json:"vendor"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	AssetID     *string  `json:"assetId"`
	WorkOrderID *string  `json:"workOrderId"`
}

func (req *quoteRequest) apply(qt *models.Quote) error {
	if req.Vendor != nil {
		if strings.TrimSpace(*req.Vendor) == "" {
			return apperr.Validation("vendor cannot be empty")
		}
		qt.Vendor = strings.TrimSpace(*req.Vendor)
	}
	if req.Description != nil {
		qt.Description = *req.Description
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return apperr.Validation("amount cannot be negative")
		}
		qt.Amount = *req.Amount
	}
	if req.AssetID != nil && *req.AssetID != "" {
		id, err := repo.ParseID(*req.AssetID)
		if err != nil {
			return apperr.Validation("invalid assetId")
		}
		qt.AssetID = id
	}
	if req.WorkOrderID != nil && *req.WorkOrderID != "" {
		id, err := repo.ParseID(*req.WorkOrderID)
		if err != nil {
			return apperr.Validation("invalid workOrderId")
		}
		qt.WorkOrderID = id
	}
	return nil
}

// POST /quotes
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req quoteRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.Vendor == nil || req.Amount == nil {
		httpserver.Error(w, r, apperr.Validation("vendor and amount are required"))
		return
	}
	qt := &models.Quote{Status: models.QuotePending, CreatedBy: u.ID}
	if err := req.apply(qt); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.CreateQuote(r.Context(), qt); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, qt)
}

// PUT /quotes/{id}
// Pending quotes only; a decided quote is frozen.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	qt, err := h.store.GetQuote(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, qt.CreatedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	if qt.Status != models.QuotePending {
		httpserver.Error(w, r, apperr.Conflict("quote already decided"))
		return
	}
	var req quoteRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if err := req.apply(qt); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.UpdateQuote(r.Context(), qt); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, qt)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status models.QuoteStatus) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	qt, err := h.store.GetQuote(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if qt.Status != models.QuotePending {
		httpserver.Error(w, r, apperr.Conflict("quote already decided"))
		return
	}
	qt.Status = status
	qt.DecidedBy = u.ID
	qt.DecidedAt = time.Now()
	if err := h.store.UpdateQuote(r.Context(), qt); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Quote{*qt}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// PATCH /quotes/{id}/approve (officer+; enforced in the router)
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.QuoteApproved)
}

// PATCH /quotes/{id}/reject (officer+; enforced in the router)
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.QuoteRejected)
}

// DELETE /quotes/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if _, err := h.store.GetQuote(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteQuote(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
