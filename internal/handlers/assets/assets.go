package assets

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

// expand resolves creator and note-author references to their public
// views.
func (h *Handler) expand(r *http.Request, items []models.Asset) error {
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].CreatedBy)
		for _, n := range items[i].Notes {
			ids = append(ids, n.AuthorID)
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
		for j := range items[i].Notes {
			if ref, ok := refs[items[i].Notes[j].AuthorID]; ok {
				items[i].Notes[j].Author = &ref
			}
		}
	}
	return nil
}

// GET /assets?status=&category=&type=&search=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.AssetFilter{
		Status:   models.AssetStatus(q.Get("status")),
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Search:   q.Get("search"),
	}
	items, err := h.store.ListAssets(r.Context(), f)
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

// GET /assets/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	a, err := h.store.GetAsset(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Asset{*a}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

type assetRequest struct {
	AssetNumber *string                      `json:"assetNumber"`
	Barcode     *string                      `json:"barcode"`
	Name        *string                      `json:"name"`
	Description *string                      `json:"description"`
	Category    *string                      `json:"category"`
	Type        *string                      `json:"type"`
	Status      *models.AssetStatus          `json:"status"`
	Location    *string                      `json:"location"`
	AssignedTo  *string                      `json:"assignedTo"`
	Certs       *[]models.AssetCertification `json:"certifications"`
}

// apply merges only the fields present in the request.
func (req *assetRequest) apply(a *models.Asset, now time.Time) error {
	if req.AssetNumber != nil {
		if strings.TrimSpace(*req.AssetNumber) == "" {
			return apperr.Validation("asset number cannot be empty")
		}
		a.AssetNumber = strings.TrimSpace(*req.AssetNumber)
	}
	if req.Barcode != nil {
		a.Barcode = strings.TrimSpace(*req.Barcode)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return apperr.Validation("name cannot be empty")
		}
		a.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if req.Location != nil {
		a.Location = *req.Location
	}
	if req.AssignedTo != nil {
		a.AssignedTo = *req.AssignedTo
	}
	if req.Certs != nil {
		certs := *req.Certs
		for i := range certs {
			certs[i].Status = certStatus(certs[i].ExpiryDate, now)
		}
		a.Certifications = certs
	}
	return nil
}

// POST /assets
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	var req assetRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if req.AssetNumber == nil || req.Name == nil || req.Category == nil {
		httpserver.Error(w, r, apperr.Validation("assetNumber, name and category are required"))
		return
	}
	a := &models.Asset{Status: models.AssetOperational, CreatedBy: u.ID}
	if err := req.apply(a, time.Now()); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.CreateAsset(r.Context(), a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Asset{*a}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// PUT /assets/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	a, err := h.store.GetAsset(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if !models.OwnsOrElevated(u, a.CreatedBy) {
		httpserver.Error(w, r, apperr.Unauthorized("insufficient permissions"))
		return
	}
	var req assetRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid JSON: "+err.Error()))
		return
	}
	if err := req.apply(a, time.Now()); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.UpdateAsset(r.Context(), a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Asset{*a}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, items[0])
}

// DELETE /assets/{id} (admin; enforced in the router)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	a, err := h.store.GetAsset(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := h.store.DeleteAsset(r.Context(), id); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	// Best-effort: image cleanup never fails the delete.
	h.files.Remove(r.Context(), a.ImagePaths...)
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /assets/{id}/notes
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	u, _ := httpctx.User(r.Context())
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	a, err := h.store.GetAsset(r.Context(), id)
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
	a.Notes = append(a.Notes, models.Note{
		ID:        primitive.NewObjectID(),
		Text:      strings.TrimSpace(body.Text),
		AuthorID:  u.ID,
		CreatedAt: time.Now(),
	})
	if err := h.store.UpdateAsset(r.Context(), a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	items := []models.Asset{*a}
	if err := h.expand(r, items); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, items[0])
}

// POST /assets/{id}/images (multipart)
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := repo.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	a, err := h.store.GetAsset(r.Context(), id)
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpserver.Error(w, r, apperr.Validation("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httpserver.Error(w, r, apperr.Validation("image file required"))
		return
	}
	defer file.Close()
	path, err := h.files.Save(file, header)
	if err != nil {
		httpserver.Error(w, r, apperr.Internal("file store error", err))
		return
	}
	a.ImagePaths = append(a.ImagePaths, path)
	if err := h.store.UpdateAsset(r.Context(), a); err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, map[string]any{"path": path})
}

// certStatus derives the expiry status for an embedded certification.
// A certification without an expiry date never expires.
func certStatus(expiry, now time.Time) string {
	if expiry.IsZero() {
		return string(models.ExpiryActive)
	}
	return derive.ExpiryStatus(expiry, now)
}
