// Package reports serves the read-only aggregate dashboards. All
// heavy lifting runs as aggregation pipelines in the store.
package reports

import (
	"net/http"
	"time"

	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

type Handler struct {
	store repo.Store
}

func New(store repo.Store) *Handler {
	return &Handler{store: store}
}

// GET /reports/assets
func (h *Handler) Assets(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.AssetReport(r.Context())
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, rep)
}

// GET /reports/work-orders
func (h *Handler) WorkOrders(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.WorkOrderReport(r.Context())
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, rep)
}

// GET /reports/maintenance
func (h *Handler) Maintenance(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.MaintenanceReport(r.Context(), time.Now())
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, rep)
}

// GET /reports/callouts
func (h *Handler) Callouts(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.CalloutReportSummary(r.Context())
	if err != nil {
		httpserver.Error(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, rep)
}
