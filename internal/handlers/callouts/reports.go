package callouts

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

// Incident report handlers. Reports live in their own collection but
// are always attached to a callout; deleting a report also pulls its
// reference from the parent.

func (h *Handler) expandReports(r *http.Request, items []models.CalloutReport) error {
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
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

// GET /callout-reports?status=&calloutId=&mine=true
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.ReportFilter{Status: models.ReportStatus(q.Get("status"))}
	if v := q.Get("calloutId"); v != "" {
		id, err := repo.ParseID(v)
		if err != nil {
			httpserver.Error(w, r, err)
			return
		}
		f.CalloutID = id
	}
	if q.Get("mine") == "true" {
		if uid, ok := httpctx.UserID(r.Context()); ok {
			f.CreatedBy = uid
		}
	}
	items, err := h.store.ListCalloutReports(r.Context(), f)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.expandReports(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// GET /callout-reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	rep, err := h.store.GetCalloutReport(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.CalloutReport{*rep}
	if err := h.expandReports(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// POST /callouts/{id}/reports
// Creates a draft report numbered RPT-<year>-<seq> and links it to the
// callout.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	calloutID, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCallout(r.Context(), calloutID)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		httpserver.Error(w, r, apperr.Validation("title is required"))
		return
	}
	now := time.Now()
	year := now.Year()
	seq, err := h.store.NextSequence(r.Context(), "RPT", year)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	rep := &models.CalloutReport{
		Number:    derive.FormatSequential("RPT", year, seq),
		CalloutID: c.ID,
		Title:     strings.TrimSpace(body.Title),
		Body:      body.Body,
		Status:    models.ReportDraft,
		CreatedBy: u.ID,
	}
	if err := h.store.CreateCalloutReport(r.Context(), rep); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c.ReportIDs = append(c.ReportIDs, rep.ID)
	if err := h.store.UpdateCallout(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.CalloutReport{*rep}
	if err := h.expandReports(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /callout-reports/{id}
// Draft reports are editable by their author; anything past draft only
// by elevated roles. Each edit appends a history entry.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	rep, err := h.store.GetCalloutReport(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if rep.Status == models.ReportDraft {
		if !models.OwnsOrElevated(u, rep.CreatedBy) {
			httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
			return
		}
	} else if !u.Role.Elevated() {
		httpserver.Error(w, r, apperr.Unauthorized("only officers may edit submitted reports"))
		return
	}
	if rep.Status == models.ReportArchived {
		httpserver.Error(w, r, apperr.Conflict("archived reports are read-only"))
		return
	}
	var body struct {
		Title *string `json:"title"`
		Body  *string `json:"body"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if body.Title != nil {
		if strings.TrimSpace(*body.Title) == "" {
			httpserver.Error(w, r, apperr.Validation("title cannot be empty"))
			return
		}
		rep.Title = strings.TrimSpace(*body.Title)
	}
	if body.Body != nil {
		rep.Body = *body.Body
	}
	rep.History = append(rep.History, models.HistoryEntry{
		EditedBy: u.ID,
		EditedAt: time.Now(),
		Summary:  "edited",
	})
	if err := h.store.UpdateCalloutReport(r.Context(), rep); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.CalloutReport{*rep}
	if err := h.expandReports(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// PATCH /callout-reports/{id}/status
// The workflow is strictly forward: draft, submitted, reviewed,
// approved, archived. Submitting is open to the author; review and
// beyond require an elevated role (enforced here since the rule depends
// on the target state).
func (h *Handler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	rep, err := h.store.GetCalloutReport(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	var body struct {
		Status models.ReportStatus `json:"status"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if !rep.Status.CanTransition(body.Status) {
		httpserver.Error(w, r, apperr.Conflict("cannot move from "+string(rep.Status)+" to "+string(body.Status)))
		return
	}
	if body.Status == models.ReportSubmitted {
		if !models.OwnsOrElevated(u, rep.CreatedBy) {
			httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
			return
		}
	} else if !u.Role.Elevated() {
		httpserver.Error(w, r, apperr.Unauthorized("only officers may advance reports"))
		return
	}
	rep.Status = body.Status
	rep.History = append(rep.History, models.HistoryEntry{
		EditedBy: u.ID,
		EditedAt: time.Now(),
		Summary:  "status " + string(body.Status),
	})
	if err := h.store.UpdateCalloutReport(r.Context(), rep); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.CalloutReport{*rep}
	if err := h.expandReports(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// POST /callout-reports/{id}/attachments (multipart)
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	rep, err := h.store.GetCalloutReport(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, rep.CreatedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	if rep.Status == models.ReportArchived {
		httpserver.Error(w, r, apperr.Conflict("archived reports are read-only"))
		return
	}
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpserver.Error(w, r, apperr.Validation("file required"))
		return
	}
	defer file.Close()
	path, err := h.files.Save(file, header)
	if err != nil {
		httpserver.Error(w, r, apperr.Internal("file store error", err))
		return
	}
	rep.Attachments = append(rep.Attachments, path)
	if err := h.store.UpdateCalloutReport(r.Context(), rep); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, map[string]any{"path": path})
}

// DELETE /callout-reports/{id} (admin; enforced in the router)
// Also removes the reference from the owning callout and cleans up
// attachment files best-effort.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	rep, err := h.store.GetCalloutReport(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteCalloutReport(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.PullReportRef(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	h.files.Remove(r.Context(), rep.Attachments...)
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
