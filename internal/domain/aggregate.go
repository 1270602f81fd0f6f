package domain

import (
	"time"

	"github.com/google/uuid"
)

// TopBid is the single largest active bid (amount and owner) for a media
// item at one scope. Zero value means no active bids remain.
type TopBid struct {
	Amount   int64      `json:"amount"`
	BidderID *uuid.UUID `json:"bidder_id,omitempty"`
}

// None reports whether there is no top bid at this scope.
func (t TopBid) None() bool { return t.Amount == 0 && t.BidderID == nil }

// EntryStatusChange carries a queue entry transition and the lifecycle
// timestamps it sets. Fields left nil are not touched.
type EntryStatusChange struct {
	Status      EntryStatus
	QueuedAt    *time.Time
	PlayedAt    *time.Time
	CompletedAt *time.Time
	VetoedAt    *time.Time
	VetoedBy    *uuid.UUID
}
