package handler

import (
	"net/http"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/projection"
)

// ChartHandler serves the cached global chart.
type ChartHandler struct {
	store projection.Store
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(store projection.Store) *ChartHandler {
	return &ChartHandler{store: store}
}

// GetChart handles GET /chart. The chart is refreshed on an interval by
// the background projection; a cold cache is a 503, not a live rescan.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	chart, err := projection.GetChart(r.Context(), h.store)
	if err != nil {
		RespondError(w, &domain.AppError{
			Code:    "CHART_UNAVAILABLE",
			Message: "global chart is not ready yet",
			Status:  http.StatusServiceUnavailable,
		})
		return
	}
	RespondJSON(w, http.StatusOK, chart)
}
