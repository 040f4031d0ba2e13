package appointments

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

func (h *Handler) expand(r *http.Request, items []models.Appointment) error {
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].CreatedBy)
		for _, a := range items[i].Attendees {
			ids = append(ids, a.UserID)
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
		for j := range items[i].Attendees {
			if ref, ok := refs[items[i].Attendees[j].UserID]; ok {
				items[i].Attendees[j].User = &ref
			}
		}
	}
	return nil
}

// GET /appointments?from=&to=&mine=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f repo.AppointmentFilter
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpserver.Error(w, r, apperr.Validation("from must be RFC3339"))
			return
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpserver.Error(w, r, apperr.Validation("to must be RFC3339"))
			return
		}
		f.To = t
	}
	if q.Get("mine") == "true" {
		if uid, ok := httpctx.UserID(r.Context()); ok {
			f.Attendee = uid
		}
	}
	items, err := h.store.ListAppointments(r.Context(), f)
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

// GET /appointments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	a, err := h.store.GetAppointment(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Appointment{*a}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type appointmentRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	AllDay      *bool      `json:"allDay"`
	Recurrence  *string    `json:"recurrence"`
	Attendees   *[]string  `json:"attendees"`
}

func (req *appointmentRequest) apply(a *models.Appointment) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return apperr.Validation("title cannot be empty")
		}
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Location != nil {
		a.Location = *req.Location
	}
	if req.Start != nil {
		a.Start = *req.Start
	}
	if req.AllDay != nil {
		a.AllDay = *req.AllDay
	}
	if req.End != nil {
		a.End = *req.End
	}
	if req.Recurrence != nil {
		a.Recurrence = *req.Recurrence
	}
	if req.Attendees != nil {
		// Replaces the attendee set; existing RSVPs survive the rewrite.
		prior := make(map[primitive.ObjectID]models.RSVPStatus, len(a.Attendees))
		for _, at := range a.Attendees {
			prior[at.UserID] = at.Status
		}
		next := make([]models.Attendee, 0, len(*req.Attendees))
		for _, hex := range *req.Attendees {
			id, err := repo.ParseID(hex)
			if err != nil {
				return apperr.Validation("invalid attendee id")
			}
			status := models.RSVPPending
			if s, ok := prior[id]; ok {
				status = s
			}
			next = append(next, models.Attendee{UserID: id, Status: status})
		}
		a.Attendees = next
	}
	// All-day events without an explicit end run to end of day.
	if a.AllDay && (a.End.IsZero() || !a.End.After(a.Start)) {
		a.End = derive.AllDayEnd(a.Start)
	}
	if a.Start.IsZero() {
		return apperr.Validation("start is required")
	}
	if !a.End.After(a.Start) {
		return apperr.Validation("end must be after start")
	}
	return nil
}

// POST /appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req appointmentRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.Title == nil || req.Start == nil {
		httpserver.Error(w, r, apperr.Validation("title and start are required"))
		return
	}
	a := &models.Appointment{CreatedBy: u.ID}
	if err := req.apply(a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.CreateAppointment(r.Context(), a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Appointment{*a}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /appointments/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	a, err := h.store.GetAppointment(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, a.CreatedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	var req appointmentRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if err := req.apply(a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.UpdateAppointment(r.Context(), a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Appointment{*a}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// DELETE /appointments/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if _, err := h.store.GetAppointment(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteAppointment(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PATCH /appointments/{id}/rsvp
// The caller RSVPs for themselves. A user not yet on the attendee list
// is added by responding.
func (h *Handler) RSVP(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	a, err := h.store.GetAppointment(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	var body struct {
		Status models.RSVPStatus `json:"status"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil || !body.Status.Valid() {
		httpserver.Error(w, r, apperr.Validation("status must be one of pending, accepted, declined, tentative"))
		return
	}
	found := false
	for i := range a.Attendees {
		if a.Attendees[i].UserID == u.ID {
			a.Attendees[i].Status = body.Status
			found = true
			break
		}
	}
	if !found {
		a.Attendees = append(a.Attendees, models.Attendee{UserID: u.ID, Status: body.Status})
	}
	if err := h.store.UpdateAppointment(r.Context(), a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Appointment{*a}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}
