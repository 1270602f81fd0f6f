package projection

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

const chartKey = "projection:chart:global"

// ChartEntry is one row of the global chart. The chart is a synthetic queue:
// every funded media is rendered as a queued entry ranked by its aggregate
// across all parties, so clients reuse the party-queue rendering for it.
type ChartEntry struct {
	MediaID      string  `json:"media_id"`
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	CoverURL     string  `json:"cover_url,omitempty"`
	Aggregate    int64   `json:"aggregate"`
	TopBidAmount int64   `json:"top_bid_amount"`
	TopBidderID  *string `json:"top_bidder_id,omitempty"`
	Status       string  `json:"status"`
}

// Chart is the cached global chart payload.
type Chart struct {
	Entries     []ChartEntry `json:"entries"`
	RefreshedAt string       `json:"refreshed_at"`
}

// BuildChart renders funded media into chart entries. Ordering matches the
// queue sort contract: aggregate descending, media ID ascending on ties.
func BuildChart(media []domain.Media) Chart {
	entries := make([]ChartEntry, 0, len(media))
	for _, m := range media {
		e := ChartEntry{
			MediaID:      m.ID.String(),
			Title:        m.Title,
			Artist:       m.Artist,
			CoverURL:     m.CoverURL,
			Aggregate:    m.GlobalAggregate,
			TopBidAmount: m.TopBidAmount,
			Status:       string(domain.EntryQueued),
		}
		if m.TopBidderID != nil {
			id := m.TopBidderID.String()
			e.TopBidderID = &id
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Aggregate != entries[j].Aggregate {
			return entries[i].Aggregate > entries[j].Aggregate
		}
		return entries[i].MediaID < entries[j].MediaID
	})
	return Chart{
		Entries:     entries,
		RefreshedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// GetChart retrieves the cached global chart.
func GetChart(ctx context.Context, store Store) (*Chart, error) {
	var c Chart
	if err := GetJSON(ctx, store, chartKey, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ChartRefresher periodically rebuilds the global chart projection from the
// media table. Reads hit the store only, so a rescan never blocks bids.
type ChartRefresher struct {
	pool       *pgxpool.Pool
	media      repository.MediaRepository
	store      Store
	interval   time.Duration
	scanBudget time.Duration
	logger     *slog.Logger
}

// NewChartRefresher creates a chart refresher.
func NewChartRefresher(pool *pgxpool.Pool, media repository.MediaRepository, store Store, interval, scanBudget time.Duration, logger *slog.Logger) *ChartRefresher {
	return &ChartRefresher{
		pool:       pool,
		media:      media,
		store:      store,
		interval:   interval,
		scanBudget: scanBudget,
		logger:     logger,
	}
}

// Start runs the refresh loop until ctx is cancelled. One refresh is done
// immediately so the chart is served from the first request onward.
func (r *ChartRefresher) Start(ctx context.Context) {
	if err := r.RefreshOnce(ctx); err != nil {
		r.logger.Error("chart refresh failed", "error", err)
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("chart refresher stopped")
			return
		case <-ticker.C:
			if err := r.RefreshOnce(ctx); err != nil {
				r.logger.Error("chart refresh failed", "error", err)
			}
		}
	}
}

// RefreshOnce rebuilds and stores the chart. Slow scans are logged, not
// aborted: a stale chart beats no chart.
func (r *ChartRefresher) RefreshOnce(ctx context.Context) error {
	start := time.Now()
	media, err := r.media.ListFunded(ctx, r.pool)
	if err != nil {
		return err
	}
	if elapsed := time.Since(start); elapsed > r.scanBudget {
		r.logger.Warn("chart scan exceeded budget",
			"elapsed", elapsed.String(),
			"budget", r.scanBudget.String(),
			"media_count", len(media))
	}
	chart := BuildChart(media)
	return SetJSON(ctx, r.store, chartKey, chart, 0)
}
