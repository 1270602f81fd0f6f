package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewBidPlacedEvent creates the standard event for a created bid.
func NewBidPlacedEvent(bid *Bid) OutboxDraft {
	payload, _ := json.Marshal(bid)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateMedia,
		AggregateID:   bid.MediaID.String(),
		EventType:     EventBidPlaced,
		PartitionKey:  bid.MediaID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBidOutbidEvent notifies the previous party-scope top bidder that a
// larger bid displaced theirs.
func NewBidOutbidEvent(previousTopBidder uuid.UUID, bid *Bid) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"previous_top_bidder": previousTopBidder.String(),
		"bid_id":              bid.ID.String(),
		"user_id":             bid.UserID.String(),
		"party_id":            bid.PartyID.String(),
		"media_id":            bid.MediaID.String(),
		"amount":              bid.Amount,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateParty,
		AggregateID:   bid.PartyID.String(),
		EventType:     EventBidOutbid,
		PartitionKey:  previousTopBidder.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewMediaVetoedEvent carries the refund summary for a vetoed entry.
func NewMediaVetoedEvent(entry *PartyQueueEntry, refunds []RefundGroup, refunded int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"party_id":       entry.PartyID.String(),
		"media_id":       entry.MediaID.String(),
		"refund_groups":  refunds,
		"refunded_total": refunded,
		"vetoed_by":      entry.VetoedBy,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateParty,
		AggregateID:   entry.PartyID.String(),
		EventType:     EventMediaVetoed,
		PartitionKey:  entry.PartyID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewWalletDepositEvent creates the event for a wallet top-up.
func NewWalletDepositEvent(tx *WalletTransaction) OutboxDraft {
	payload, _ := json.Marshal(tx)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWallet,
		AggregateID:   tx.UserID.String(),
		EventType:     EventWalletDeposit,
		PartitionKey:  tx.UserID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewEntryTransitionEvent creates a playback lifecycle event for a queue
// entry reaching playing or played.
func NewEntryTransitionEvent(entry *PartyQueueEntry, evtType EventType) OutboxDraft {
	payload, _ := json.Marshal(entry)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateParty,
		AggregateID:   entry.PartyID.String(),
		EventType:     evtType,
		PartitionKey:  entry.PartyID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
