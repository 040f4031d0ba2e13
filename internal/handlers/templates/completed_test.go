package templates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

type fakeStore struct {
	repo.Store
	templates map[primitive.ObjectID]*models.Template
	completed map[primitive.ObjectID]*models.CompletedChecklist
	useCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates: map[primitive.ObjectID]*models.Template{},
		completed: map[primitive.ObjectID]*models.CompletedChecklist{},
	}
}

func (f *fakeStore) GetTemplate(_ context.Context, id primitive.ObjectID) (*models.Template, error) {
	if t, ok := f.templates[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, apperr.NotFound("template not found")
}

func (f *fakeStore) IncrementTemplateUsage(_ context.Context, id primitive.ObjectID) error {
	if t, ok := f.templates[id]; ok {
		t.UsageCount++
		f.useCalls++
		return nil
	}
	return apperr.NotFound("template not found")
}

func (f *fakeStore) CreateCompletedChecklist(_ context.Context, c *models.CompletedChecklist) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	f.completed[c.ID] = c
	return nil
}

func (f *fakeStore) UserRefs(_ context.Context, _ []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	return map[primitive.ObjectID]models.UserRef{}, nil
}

func seedTemplate(f *fakeStore, active bool) *models.Template {
	t := &models.Template{
		ID:     primitive.NewObjectID(),
		Kind:   models.TemplateChecklist,
		Name:   "pre-deployment",
		Items:  []models.ChecklistItem{{Text: "radio check", Required: true}},
		Active: active,
	}
	f.templates[t.ID] = t
	return t
}

func TestCreateCompletedRecomputesCounters(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	tmpl := seedTemplate(store, true)
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}

	// Two of three done, the required one incomplete: 67% partial. The
	// client-sent percentage is ignored.
	body := `{
		"templateId": "` + tmpl.ID.Hex() + `",
		"completionPercentage": 100,
		"status": "completed",
		"items": [
			{"text":"a","required":false,"completed":true},
			{"text":"b","required":true,"completed":false},
			{"text":"c","required":false,"completed":true}
		]
	}`
	req := httptest.NewRequest("POST", "/completed-checklists", strings.NewReader(body))
	req = req.WithContext(auth.WithUser(req.Context(), u))
	rec := httptest.NewRecorder()
	h.CreateCompleted(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out models.CompletedChecklist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 3, out.TotalItems)
	assert.Equal(t, 2, out.CompletedItems)
	assert.Equal(t, 1, out.RequiredItems)
	assert.Equal(t, 0, out.CompletedRequired)
	assert.Equal(t, 67, out.CompletionPercent)
	assert.Equal(t, "partial", out.Status)
}

func TestCreateCompletedUnknownTemplate(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}

	body := `{"templateId":"` + primitive.NewObjectID().Hex() + `","items":[]}`
	req := httptest.NewRequest("POST", "/completed-checklists", strings.NewReader(body))
	req = req.WithContext(auth.WithUser(req.Context(), u))
	rec := httptest.NewRecorder()
	h.CreateCompleted(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUseBumpsCounterOnceAndRejectsInactive(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	tmpl := seedTemplate(store, true)
	inactive := seedTemplate(store, false)

	use := func(id primitive.ObjectID) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/templates/checklist/"+id.Hex()+"/use", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id.Hex())
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		h.Use(rec, req)
		return rec
	}

	rec := use(tmpl.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.useCalls)
	assert.Equal(t, int64(1), store.templates[tmpl.ID].UsageCount)

	rec = use(inactive.ID)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, store.useCalls)
}
