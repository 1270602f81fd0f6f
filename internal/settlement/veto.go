package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crowdcue/platform/internal/aggregate"
	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/ledger"
	"github.com/crowdcue/platform/internal/queue"
	"github.com/crowdcue/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VetoSettlement executes the host/admin veto of a queued entry.
type VetoSettlement struct {
	engine *ledger.Engine
	bids   repository.BidRepository
	media  repository.MediaRepository
	queue  repository.QueueRepository
	outbox repository.OutboxRepository
}

// NewVetoSettlement creates a veto settlement handler.
func NewVetoSettlement(
	engine *ledger.Engine,
	bids repository.BidRepository,
	media repository.MediaRepository,
	queue repository.QueueRepository,
	outbox repository.OutboxRepository,
) *VetoSettlement {
	return &VetoSettlement{engine: engine, bids: bids, media: media, queue: queue, outbox: outbox}
}

// ExecuteVeto runs the compensating transaction inside the caller's pgx
// transaction:
//
//  1. guard: actor is host or admin, entry exists and is queued
//  2. snapshot the active bids under row locks
//  3. group by bidder and credit each group's sum back to its wallet
//  4. flip every bid to vetoed
//  5. recompute media/entry aggregates; if the vetoed set held the global
//     top bid, re-scan the remaining active set for the true maximum
//  6. transition the entry to vetoed with vetoedAt/vetoedBy
//
// A second veto of the same entry fails the status guard in step 1, so no
// bidder can be credited twice.
func (s *VetoSettlement) ExecuteVeto(ctx context.Context, tx pgx.Tx, party *domain.Party, params domain.VetoParams) (*domain.VetoResult, error) {
	if !params.AsAdmin && !party.IsHost(params.ActorID) {
		return nil, domain.ErrForbidden("only the party host or a platform admin may veto")
	}

	entry, err := s.queue.LockEntry(ctx, tx, params.PartyID, params.MediaID)
	if err != nil {
		return nil, fmt.Errorf("veto lock entry: %w", err)
	}
	if entry == nil {
		return nil, domain.ErrNotFound("queue entry", params.MediaID.String())
	}
	// Only queued entries may be vetoed; playing and played are immune by
	// policy, and a repeat veto fails here before any credit is issued.
	if err := queue.Guard(entry.Status, domain.EntryVetoed); err != nil {
		return nil, err
	}

	bids, err := s.bids.FindActiveForUpdate(ctx, tx, params.MediaID, params.PartyID)
	if err != nil {
		return nil, fmt.Errorf("veto snapshot bids: %w", err)
	}

	// Refund each bidder's group sum. Wallet locks are taken in the
	// GroupRefunds order on every code path.
	groups := GroupRefunds(bids)
	var refunded int64
	for _, g := range groups {
		if _, err := s.engine.LockWalletForUpdate(ctx, tx, g.UserID); err != nil {
			return nil, fmt.Errorf("veto lock wallet: %w", err)
		}
		meta, _ := json.Marshal(map[string]interface{}{
			"party_id": params.PartyID.String(),
			"media_id": params.MediaID.String(),
			"bids":     g.Bids,
		})
		partyID := params.PartyID
		if _, _, err := s.engine.PostWalletEntry(ctx, tx, domain.PostWalletEntryParams{
			UserID:   g.UserID,
			Type:     domain.TxRefundCredit,
			Amount:   g.Amount,
			Delta:    g.Amount,
			PartyID:  &partyID,
			Metadata: meta,
		}); err != nil {
			return nil, fmt.Errorf("veto refund credit: %w", err)
		}
		refunded += g.Amount
	}

	ids := make([]uuid.UUID, len(bids))
	for i := range bids {
		ids[i] = bids[i].ID
	}
	if err := s.bids.MarkVetoed(ctx, tx, ids); err != nil {
		return nil, fmt.Errorf("veto mark bids: %w", err)
	}

	media, err := s.media.LockForUpdate(ctx, tx, params.MediaID)
	if err != nil {
		return nil, fmt.Errorf("veto lock media: %w", err)
	}
	if media == nil {
		return nil, domain.ErrNotFound("media", params.MediaID.String())
	}

	globalTotal := media.GlobalAggregate - refunded
	globalTop := domain.TopBid{Amount: media.TopBidAmount, BidderID: media.TopBidderID}
	if aggregate.TopAffected(bids, globalTop) {
		// The high-water mark pointed into the refunded set; the true
		// maximum lives in the remaining active bids (other parties).
		remaining, err := s.bids.FindActiveByMedia(ctx, tx, params.MediaID)
		if err != nil {
			return nil, fmt.Errorf("veto rescan bids: %w", err)
		}
		globalTop = aggregate.RecomputeTop(remaining)
	}
	media, err = s.media.UpdateAggregates(ctx, tx, media.ID, globalTotal, globalTop)
	if err != nil {
		return nil, fmt.Errorf("veto media aggregates: %w", err)
	}

	// Every bid on this entry was refunded, so the party scope zeroes out.
	if _, err := s.queue.UpdateAggregates(ctx, tx, entry.ID, 0, domain.TopBid{}); err != nil {
		return nil, fmt.Errorf("veto entry aggregates: %w", err)
	}

	now := time.Now().UTC()
	actor := params.ActorID
	entry, err = s.queue.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusChange{
		Status:   domain.EntryVetoed,
		VetoedAt: &now,
		VetoedBy: &actor,
	})
	if err != nil {
		return nil, fmt.Errorf("veto transition entry: %w", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewMediaVetoedEvent(entry, groups, refunded)); err != nil {
		return nil, fmt.Errorf("veto outbox: %w", err)
	}

	return &domain.VetoResult{
		Entry:    entry,
		Media:    media,
		Refunds:  groups,
		Refunded: refunded,
	}, nil
}
