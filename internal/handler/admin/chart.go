package admin

import (
	"net/http"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/handler"
	"github.com/crowdcue/platform/internal/projection"
)

// ChartHandler triggers an out-of-schedule rebuild of the global chart,
// for when an operator does not want to wait out the refresh interval.
type ChartHandler struct {
	refresher *projection.ChartRefresher
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(refresher *projection.ChartRefresher) *ChartHandler {
	return &ChartHandler{refresher: refresher}
}

// Refresh handles POST /admin/chart/refresh.
func (h *ChartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.RefreshOnce(r.Context()); err != nil {
		handler.RespondError(w, domain.ErrInternal("refresh chart", err))
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]bool{"refreshed": true})
}
