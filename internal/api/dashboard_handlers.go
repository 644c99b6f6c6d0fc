package api

import (
	"net/http"
	"strconv"

	"github.com/ignite/mailflow/internal/pkg/httputil"
	"github.com/ignite/mailflow/internal/service/dashboard"
)

// ListLogs handles GET /api/logs. With ?limit=N it returns the latest N
// entries newest first, otherwise the whole log oldest first.
func (h *Handlers) ListLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.All(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		entries = dashboard.Recent(entries, n)
	}
	httputil.OK(w, entries)
}

// GetDashboard handles GET /api/dashboard
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Dashboard(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, d)
}

// GetDashboardStats handles GET /api/dashboard/stats
func (h *Handlers) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, stats)
}
