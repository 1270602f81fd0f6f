package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus is the closed queue entry lifecycle enum. Transition rules
// are enforced by the queue package's transition table.
type EntryStatus string

const (
	EntryQueued  EntryStatus = "queued"
	EntryPlaying EntryStatus = "playing"
	EntryPlayed  EntryStatus = "played"
	EntryVetoed  EntryStatus = "vetoed"
)

// PartyStatus is the party scheduling lifecycle.
type PartyStatus string

const (
	PartyScheduled PartyStatus = "scheduled"
	PartyLive      PartyStatus = "live"
	PartyEnded     PartyStatus = "ended"
)

// Party represents a parties row.
type Party struct {
	ID         uuid.UUID   `json:"id"`
	HostID     uuid.UUID   `json:"host_id"`
	Name       string      `json:"name"`
	MinimumBid int64       `json:"minimum_bid"`
	Status     PartyStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// IsHost reports whether the given user hosts this party.
func (p *Party) IsHost(userID uuid.UUID) bool { return p.HostID == userID }

// PartyQueueEntry represents one media item's presence in one party's
// queue. Aggregate and the top bid are party-scoped and derived from the
// active-bid set for (party, media). Entries are never destroyed; vetoed
// entries persist for audit.
type PartyQueueEntry struct {
	ID           uuid.UUID   `json:"id"`
	PartyID      uuid.UUID   `json:"party_id"`
	MediaID      uuid.UUID   `json:"media_id"`
	Aggregate    int64       `json:"aggregate"`
	TopBidAmount int64       `json:"top_bid_amount"`
	TopBidderID  *uuid.UUID  `json:"top_bidder_id,omitempty"`
	Status       EntryStatus `json:"status"`
	QueuedAt     time.Time   `json:"queued_at"`
	PlayedAt     *time.Time  `json:"played_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	VetoedAt     *time.Time  `json:"vetoed_at,omitempty"`
	VetoedBy     *uuid.UUID  `json:"vetoed_by,omitempty"`
}
