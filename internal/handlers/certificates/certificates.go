// Package certificates serves per-member credentials. Expiry status and
// days-until-expiry are derived on every read and save; clients never
// set them.
package certificates

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
	"github.com/geijin5/APSAR-Tracker-sub001/internal/uploads"
)

type Handler struct {
	store repo.Store
	files *uploads.Store
}

func New(store repo.Store, files *uploads.Store) *Handler {
	return &Handler{store: store, files: files}
}

func (h *Handler) decorate(r *http.Request, items []models.Certificate) error {
	now := time.Now()
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		items[i].Status = models.ExpiryStatus(derive.ExpiryStatus(items[i].ExpiryDate, now))
		items[i].DaysUntilExpiry = derive.DaysUntilExpiry(items[i].ExpiryDate, now)
		ids = append(ids, items[i].UserID)
	}
	refs, err := h.store.UserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range items {
		if ref, ok := refs[items[i].UserID]; ok {
			items[i].Holder = &ref
		}
	}
	return nil
}

// GET /certificates?userId=&status=&mine=true
// Members see their own; elevated roles can query anyone's.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	q := r.URL.Query()
	f := repo.CertificateFilter{Status: models.ExpiryStatus(q.Get("status"))}
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
	items, err := h.store.ListCertificates(r.Context(), f)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	// The stored status can lag the clock; filter on the derived value.
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if f.Status != "" {
		kept := items[:0]
		for _, c := range items {
			if c.Status == f.Status {
				kept = append(kept, c)
			}
		}
		items = kept
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// GET /certificates/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCertificate(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, c.UserID) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	items := []models.Certificate{*c}
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type certificateRequest struct {
	UserID      *string    `json:"userId"`
	Name        *string    `json:"name"`
	IssuingBody *string    `json:"issuingBody"`
	IssuedDate  *time.Time `json:"issuedDate"`
	ExpiryDate  *time.Time `json:"expiryDate"`
}

func (req *certificateRequest) apply(c *models.Certificate, caller *models.User) error {
	if req.UserID != nil {
		id, err := repo.ParseID(*req.UserID)
		if err != nil {
			return apperr.Validation("invalid userId")
		}
		// Only elevated roles may file certificates for someone else.
		if id != caller.ID && !caller.Role.Elevated() {
			return apperr.Unauthorized("cannot manage another member's certificates")
		}
		c.UserID = id
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return apperr.Validation("name cannot be empty")
		}
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.IssuingBody != nil {
		c.IssuingBody = *req.IssuingBody
	}
	if req.IssuedDate != nil {
		c.IssuedDate = *req.IssuedDate
	}
	if req.ExpiryDate != nil {
		c.ExpiryDate = *req.ExpiryDate
	}
	if !c.ExpiryDate.IsZero() && !c.IssuedDate.IsZero() && c.ExpiryDate.Before(c.IssuedDate) {
		return apperr.Validation("expiryDate cannot precede issuedDate")
	}
	c.Status = models.ExpiryStatus(derive.ExpiryStatus(c.ExpiryDate, time.Now()))
	return nil
}

// POST /certificates
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req certificateRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.Name == nil || req.ExpiryDate == nil {
		httpserver.Error(w, r, apperr.Validation("name and expiryDate are required"))
		return
	}
	c := &models.Certificate{UserID: u.ID}
	if err := req.apply(c, u); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.CreateCertificate(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Certificate{*c}
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /certificates/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCertificate(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, c.UserID) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	var req certificateRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if err := req.apply(c, u); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.UpdateCertificate(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Certificate{*c}
	if err := h.decorate(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// DELETE /certificates/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCertificate(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteCertificate(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	h.files.Remove(r.Context(), c.FilePaths...)
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /certificates/{id}/files (multipart)
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	c, err := h.store.GetCertificate(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, c.UserID) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
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
	c.FilePaths = append(c.FilePaths, path)
	if err := h.store.UpdateCertificate(r.Context(), c); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, map[string]any{"path": path})
}
