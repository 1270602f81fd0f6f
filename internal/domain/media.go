package domain

import (
	"time"

	"github.com/google/uuid"
)

// Media represents a media row. GlobalAggregate and the global top bid are
// derived from the active-bid set across every party and maintained by the
// aggregate engine inside the same transaction as the bid write.
type Media struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Artist          string     `json:"artist"`
	DurationSeconds int        `json:"duration_seconds"`
	CoverURL        string     `json:"cover_url,omitempty"`
	GlobalAggregate int64      `json:"global_aggregate"`
	TopBidAmount    int64      `json:"top_bid_amount"`
	TopBidderID     *uuid.UUID `json:"top_bidder_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MediaMetadata is the display-only enrichment fetched from the external
// metadata provider at bid time. Best-effort; defaults are used on failure.
type MediaMetadata struct {
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	DurationSeconds int    `json:"duration_seconds"`
	CoverURL        string `json:"cover_url"`
}

// DefaultMetadata is the fallback when the metadata provider is slow or down.
func DefaultMetadata() MediaMetadata {
	return MediaMetadata{Title: "Unknown", Artist: "Unknown", DurationSeconds: 0}
}
