package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crowdcue/platform/internal/aggregate"
	"github.com/crowdcue/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExecutePlaceBid moves money out of the bidder's wallet, appends the bid,
// folds it into both aggregate scopes and creates-or-updates the queue
// entry. Everything runs inside the caller's transaction: if the debit
// fails nothing happens, and if any downstream write fails the debit rolls
// back with it.
//
// Lock order here is wallet → media → entry. The veto path acquires in a
// different order (entry → bids → wallets → media), so place-bid/veto pairs
// can deadlock under contention; callers absorb that with the deadlock
// retry in the service layer rather than a shared acquisition order.
func (e *Engine) ExecutePlaceBid(ctx context.Context, tx pgx.Tx, minimumBid int64, params domain.PlaceBidParams) (*domain.PlaceBidResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateScope(params.Scope); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if params.Amount < minimumBid {
		return nil, domain.ErrValidation(fmt.Sprintf("bid %d is below the party minimum of %d", params.Amount, minimumBid))
	}

	// Wallet: lock, check, debit.
	wallet, err := e.LockWalletForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("place bid: %w", err)
	}
	if wallet.Balance < params.Amount {
		return nil, domain.ErrInsufficientBalance()
	}

	bid := &domain.Bid{
		ID:        uuid.New(),
		UserID:    params.UserID,
		PartyID:   params.PartyID,
		MediaID:   params.MediaID,
		Amount:    params.Amount,
		Scope:     params.Scope,
		Status:    domain.BidActive,
		CreatedAt: time.Now().UTC(),
	}

	meta, _ := json.Marshal(map[string]string{
		"party_id": params.PartyID.String(),
		"media_id": params.MediaID.String(),
		"scope":    string(params.Scope),
	})
	bidID := bid.ID
	partyID := params.PartyID
	_, updatedWallet, err := e.PostWalletEntry(ctx, tx, domain.PostWalletEntryParams{
		UserID:   params.UserID,
		Type:     domain.TxBidDebit,
		Amount:   params.Amount,
		Delta:    -params.Amount,
		BidID:    &bidID,
		PartyID:  &partyID,
		Metadata: meta,
	})
	if err != nil {
		return nil, fmt.Errorf("place bid debit: %w", err)
	}

	if err := e.bids.Insert(ctx, tx, bid); err != nil {
		return nil, fmt.Errorf("place bid insert: %w", err)
	}

	// Global scope: fold the bid into the media aggregates.
	media, err := e.media.LockForUpdate(ctx, tx, params.MediaID)
	if err != nil {
		return nil, fmt.Errorf("place bid lock media: %w", err)
	}
	if media == nil {
		return nil, domain.ErrNotFound("media", params.MediaID.String())
	}

	globalTotal, globalTop := aggregate.ApplyBid(
		media.GlobalAggregate,
		domain.TopBid{Amount: media.TopBidAmount, BidderID: media.TopBidderID},
		bid,
	)
	media, err = e.media.UpdateAggregates(ctx, tx, media.ID, globalTotal, globalTop)
	if err != nil {
		return nil, fmt.Errorf("place bid media aggregates: %w", err)
	}

	// Party scope: create the entry on first bid, then fold.
	entry, err := e.queue.Upsert(ctx, tx, &domain.PartyQueueEntry{
		ID:       uuid.New(),
		PartyID:  params.PartyID,
		MediaID:  params.MediaID,
		Status:   domain.EntryQueued,
		QueuedAt: bid.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("place bid upsert entry: %w", err)
	}

	entryTotal := entry.Aggregate
	entryTop := domain.TopBid{Amount: entry.TopBidAmount, BidderID: entry.TopBidderID}
	previousTop := entryTop

	if entry.Status == domain.EntryVetoed {
		// A bid against a vetoed entry revives it. The old bids were
		// refunded, so the aggregates restart from this bid alone and the
		// entry re-enters the queue as of now, not its original spot.
		entryTotal, entryTop = 0, domain.TopBid{}
		previousTop = domain.TopBid{}
		entry, err = e.queue.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusChange{
			Status:   domain.EntryQueued,
			QueuedAt: &bid.CreatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("place bid revive entry: %w", err)
		}
	}

	entryTotal, entryTop = aggregate.ApplyBid(entryTotal, entryTop, bid)
	entry, err = e.queue.UpdateAggregates(ctx, tx, entry.ID, entryTotal, entryTop)
	if err != nil {
		return nil, fmt.Errorf("place bid entry aggregates: %w", err)
	}

	// Outbox: BidPlaced always; BidOutbid when the party-scope top bidder
	// was displaced by someone else.
	if err := e.outbox.Insert(ctx, tx, domain.NewBidPlacedEvent(bid)); err != nil {
		return nil, fmt.Errorf("place bid outbox: %w", err)
	}

	var outbid *uuid.UUID
	if previousTop.BidderID != nil && entryTop.BidderID != nil &&
		*previousTop.BidderID != *entryTop.BidderID {
		outbid = previousTop.BidderID
		if err := e.outbox.Insert(ctx, tx, domain.NewBidOutbidEvent(*outbid, bid)); err != nil {
			return nil, fmt.Errorf("place bid outbid outbox: %w", err)
		}
	}

	return &domain.PlaceBidResult{
		Bid:        bid,
		Wallet:     updatedWallet,
		Entry:      entry,
		Media:      media,
		OutbidUser: outbid,
	}, nil
}
