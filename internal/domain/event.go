package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventBidPlaced     EventType = "cue.bid.placed"
	EventBidOutbid     EventType = "cue.bid.outbid"
	EventMediaVetoed   EventType = "cue.media.vetoed"
	EventWalletDeposit EventType = "cue.wallet.deposited"
	EventEntryPlaying  EventType = "cue.queue.entry.playing"
	EventEntryPlayed   EventType = "cue.queue.entry.played"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateWallet AggregateType = "wallet"
	AggregateMedia  AggregateType = "media"
	AggregateParty  AggregateType = "party"
)

// OutboxDraft is the payload written to the event_outbox table. Events are
// written in the same transaction as the state change and delivered later
// by the outbox poller; delivery failures never roll back the money path.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
