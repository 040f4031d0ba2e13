package workorders

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

func (h *Handler) expand(r *http.Request, items []models.WorkOrder) error {
	ids := make([]primitive.ObjectID, 0, len(items)*2)
	for i := range items {
		ids = append(ids, items[i].RequestedBy)
		if !items[i].AssignedTo.IsZero() {
			ids = append(ids, items[i].AssignedTo)
		}
		for _, n := range items[i].Notes {
			ids = append(ids, n.AuthorID)
		}
	}
	refs, err := h.store.UserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range items {
		if ref, ok := refs[items[i].RequestedBy]; ok {
			items[i].Requester = &ref
		}
		if ref, ok := refs[items[i].AssignedTo]; ok {
			items[i].Assignee = &ref
		}
		for j := range items[i].Notes {
			if ref, ok := refs[items[i].Notes[j].AuthorID]; ok {
				items[i].Notes[j].Author = &ref
			}
		}
	}
	return nil
}

// GET /work-orders?status=&priority=&assetId=&assignedTo=&search=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.WorkOrderFilter{
		Status:   models.WorkOrderStatus(q.Get("status")),
		Priority: models.Priority(q.Get("priority")),
		Search:   q.Get("search"),
	}
	if v := q.Get("assetId"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.AssetID = id
	}
	if v := q.Get("assignedTo"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.AssignedTo = id
	}
	items, err := h.store.ListWorkOrders(r.Context(), f)
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

// GET /work-orders/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	wo, err := h.store.GetWorkOrder(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.WorkOrder{*wo}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type workOrderRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	AssetID     *string          `json:"assetId"`
	Priority    *models.Priority `json:"priority"`
	AssignedTo  *string          `json:"assignedTo"`
	DueDate     *time.Time       `json:"dueDate"`
}

func (req *workOrderRequest) apply(wo *models.WorkOrder) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return apperr.Validation("title cannot be empty")
		}
		wo.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		wo.Description = *req.Description
	}
	if req.AssetID != nil {
		if *req.AssetID == "" {
			wo.AssetID = primitive.NilObjectID
		} else {
			id, err := repo.ParseID(*req.AssetID)
			if err != nil {
				return apperr.Validation("invalid assetId")
			}
			wo.AssetID = id
		}
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return apperr.Validation("unknown priority")
		}
		wo.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			wo.AssignedTo = primitive.NilObjectID
		} else {
			id, err := repo.ParseID(*req.AssignedTo)
			if err != nil {
				return apperr.Validation("invalid assignedTo")
			}
			wo.AssignedTo = id
		}
	}
	if req.DueDate != nil {
		wo.DueDate = *req.DueDate
	}
	return nil
}

// POST /work-orders
// The WO-<year>-<seq> number comes from an atomic counter, so two
// concurrent creates can never collide.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req workOrderRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.Title == nil {
		httpserver.Error(w, r, apperr.Validation("title is required"))
		return
	}
	wo := &models.WorkOrder{
		Status:      models.WorkOrderOpen,
		Priority:    models.PriorityMedium,
		RequestedBy: u.ID,
	}
	if err := req.apply(wo); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !wo.AssignedTo.IsZero() {
		wo.Status = models.WorkOrderAssigned
	}
	year := time.Now().Year()
	seq, err := h.store.NextSequence(r.Context(), "WO", year)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	wo.Number = derive.FormatSequential("WO", year, seq)
	if err := h.store.CreateWorkOrder(r.Context(), wo); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.WorkOrder{*wo}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /work-orders/{id}
// Status is not merged here; transitions go through PATCH /status.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	wo, err := h.store.GetWorkOrder(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, wo.RequestedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	if wo.Status.Terminal() {
		httpserver.Error(w, r, apperr.Conflict("work order is closed"))
		return
	}
	var req workOrderRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	wasUnassigned := wo.AssignedTo.IsZero()
	if err := req.apply(wo); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if wasUnassigned && !wo.AssignedTo.IsZero() && wo.Status == models.WorkOrderOpen {
		wo.Status = models.WorkOrderAssigned
	}
	if err := h.store.UpdateWorkOrder(r.Context(), wo); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.WorkOrder{*wo}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// PATCH /work-orders/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	wo, err := h.store.GetWorkOrder(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	var body struct {
		Status models.WorkOrderStatus `json:"status"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if !wo.Status.CanTransition(body.Status) {
		httpserver.Error(w, r, apperr.Conflict("cannot move from "+string(wo.Status)+" to "+string(body.Status)))
		return
	}
	wo.Status = body.Status
	if body.Status == models.WorkOrderCompleted {
		wo.CompletedAt = time.Now()
	}
	if err := h.store.UpdateWorkOrder(r.Context(), wo); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.WorkOrder{*wo}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// DELETE /work-orders/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if _, err := h.store.GetWorkOrder(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteWorkOrder(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /work-orders/{id}/notes
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	wo, err := h.store.GetWorkOrder(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil || strings.TrimSpace(body.Text) == "" {
		httpserver.Error(w, r, apperr.Validation("text required"))
		return
	}
	wo.Notes = append(wo.Notes, models.Note{
		ID:        primitive.NewObjectID(),
		Text:      strings.TrimSpace(body.Text),
		AuthorID:  u.ID,
		CreatedAt: time.Now(),
	})
	if err := h.store.UpdateWorkOrder(r.Context(), wo); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.WorkOrder{*wo}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}
