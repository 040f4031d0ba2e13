package workorders

import (
	"context"
	"encoding/json"
	"fmt"
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
	seqs   map[string]int64
	orders map[primitive.ObjectID]*models.WorkOrder
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		seqs:   map[string]int64{},
		orders: map[primitive.ObjectID]*models.WorkOrder{},
	}
}

func (f *fakeStore) NextSequence(_ context.Context, prefix string, year int) (int64, error) {
	key := fmt.Sprintf("%s-%d", prefix, year)
	n := f.seqs[key]
	f.seqs[key] = n + 1
	return n, nil
}

func (f *fakeStore) CreateWorkOrder(_ context.Context, wo *models.WorkOrder) error {
	wo.ID = primitive.NewObjectID()
	wo.CreatedAt = time.Now()
	f.orders[wo.ID] = wo
	return nil
}

func (f *fakeStore) GetWorkOrder(_ context.Context, id primitive.ObjectID) (*models.WorkOrder, error) {
	if wo, ok := f.orders[id]; ok {
		cp := *wo
		return &cp, nil
	}
	return nil, apperr.NotFound("work order not found")
}

func (f *fakeStore) UpdateWorkOrder(_ context.Context, wo *models.WorkOrder) error {
	if _, ok := f.orders[wo.ID]; !ok {
		return apperr.NotFound("work order not found")
	}
	cp := *wo
	f.orders[wo.ID] = &cp
	return nil
}

func (f *fakeStore) UserRefs(_ context.Context, _ []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	return map[primitive.ObjectID]models.UserRef{}, nil
}

func asUser(req *http.Request, u *models.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), u))
}

func member() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "m", Role: models.RoleMember, Active: true}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	u := member()
	year := time.Now().Year()

	var numbers []string
	for i := 0; i < 3; i++ {
		req := asUser(httptest.NewRequest("POST", "/work-orders", strings.NewReader(`{"title":"fix winch"}`)), u)
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var out models.WorkOrder
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		numbers = append(numbers, out.Number)
	}
	prefix := fmt.Sprintf("WO-%d", year)
	assert.Equal(t, []string{prefix + "-0001", prefix + "-0002", prefix + "-0003"}, numbers)
}

func TestCreateRequiresTitle(t *testing.T) {
	h := New(newFakeStore())
	req := asUser(httptest.NewRequest("POST", "/work-orders", strings.NewReader(`{"priority":"high"}`)), member())
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func patchStatus(t *testing.T, h *Handler, u *models.User, id primitive.ObjectID, status string) *httptest.ResponseRecorder {
	t.Helper()
	req := asUser(httptest.NewRequest("PATCH", "/work-orders/"+id.Hex()+"/status",
		strings.NewReader(`{"status":"`+status+`"}`)), u)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.Hex())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)
	return rec
}

func TestStatusTransitions(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	officer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleOfficer, Active: true}

	wo := &models.WorkOrder{Title: "t", Status: models.WorkOrderOpen, Priority: models.PriorityLow, RequestedBy: officer.ID}
	require.NoError(t, store.CreateWorkOrder(context.Background(), wo))

	// Skipping open -> completed is rejected.
	rec := patchStatus(t, h, officer, wo.ID, "completed")
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, next := range []string{"assigned", "in_progress", "completed"} {
		rec = patchStatus(t, h, officer, wo.ID, next)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	got := store.orders[wo.ID]
	assert.Equal(t, models.WorkOrderCompleted, got.Status)
	assert.False(t, got.CompletedAt.IsZero())

	// Terminal states are final.
	rec = patchStatus(t, h, officer, wo.ID, "open")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateOwnership(t *testing.T) {
	store := newFakeStore()
	h := New(store)
	owner := member()
	stranger := member()

	wo := &models.WorkOrder{Title: "t", Status: models.WorkOrderOpen, Priority: models.PriorityLow, RequestedBy: owner.ID}
	require.NoError(t, store.CreateWorkOrder(context.Background(), wo))

	update := func(u *models.User) *httptest.ResponseRecorder {
		req := asUser(httptest.NewRequest("PUT", "/work-orders/"+wo.ID.Hex(),
			strings.NewReader(`{"description":"changed"}`)), u)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", wo.ID.Hex())
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		h.Update(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, update(stranger).Code)
	assert.Equal(t, http.StatusOK, update(owner).Code)
	assert.Equal(t, http.StatusOK, update(&models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}).Code)
}

func TestGetUnknownAndMalformedIDs(t *testing.T) {
	store := newFakeStore()
	h := New(store)

	get := func(id string) int {
		req := asUser(httptest.NewRequest("GET", "/work-orders/"+id, nil), member())
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		h.Get(rec, req)
		return rec.Code
	}

	// Both an unknown id and a malformed one read as 404.
	assert.Equal(t, http.StatusNotFound, get(primitive.NewObjectID().Hex()))
	assert.Equal(t, http.StatusNotFound, get("not-a-hex-id"))
}
