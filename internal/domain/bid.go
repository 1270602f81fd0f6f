package domain

import (
	"time"

	"github.com/google/uuid"
)

// BidScope distinguishes party-local bids from bids placed against the
// platform-wide chart.
type BidScope string

const (
	ScopeParty  BidScope = "party"
	ScopeGlobal BidScope = "global"
)

// BidStatus is the bid lifecycle. Bids are never deleted; vetoing flips
// the status so historical queries and audits stay consistent.
type BidStatus string

const (
	BidActive BidStatus = "active"
	BidVetoed BidStatus = "vetoed"
)

// Bid represents a bids row. Immutable once created except for the
// active → vetoed status transition.
type Bid struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	PartyID   uuid.UUID  `json:"party_id"`
	MediaID   uuid.UUID  `json:"media_id"`
	Amount    int64      `json:"amount"`
	Scope     BidScope   `json:"scope"`
	Status    BidStatus  `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	VetoedAt  *time.Time `json:"vetoed_at,omitempty"`
}

// PlaceBidParams holds the input for ExecutePlaceBid.
type PlaceBidParams struct {
	UserID  uuid.UUID
	PartyID uuid.UUID
	MediaID uuid.UUID
	Amount  int64
	Scope   BidScope
}

// PlaceBidResult is returned from ExecutePlaceBid.
type PlaceBidResult struct {
	Bid        *Bid
	Wallet     *User
	Entry      *PartyQueueEntry
	Media      *Media
	// OutbidUser is set when this bid displaced the party-scope top bidder.
	OutbidUser *uuid.UUID
}

// VetoParams holds the input for ExecuteVeto.
type VetoParams struct {
	PartyID uuid.UUID
	MediaID uuid.UUID
	ActorID uuid.UUID
	// AsAdmin bypasses the host check (platform admin veto).
	AsAdmin bool
}

// RefundGroup is one bidder's refund inside a veto: the sum of their
// active bids on the vetoed entry, credited back in a single wallet credit.
type RefundGroup struct {
	UserID uuid.UUID `json:"user_id"`
	Amount int64     `json:"amount"`
	Bids   int       `json:"bids"`
}

// VetoResult summarizes a completed veto/refund transaction.
type VetoResult struct {
	Entry    *PartyQueueEntry `json:"entry"`
	Media    *Media           `json:"media"`
	Refunds  []RefundGroup    `json:"refunds"`
	Refunded int64            `json:"refunded"`
}
