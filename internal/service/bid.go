package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/guard"
	"github.com/crowdcue/platform/internal/infra"
	"github.com/crowdcue/platform/internal/ledger"
	"github.com/crowdcue/platform/internal/policy"
	"github.com/crowdcue/platform/internal/projection"
	"github.com/crowdcue/platform/internal/provider"
	"github.com/crowdcue/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidService orchestrates the place-bid command: admission checks, media
// enrichment, and the single all-or-nothing transaction that moves money
// and aggregates together.
type BidService struct {
	pool     *pgxpool.Pool
	engine   *ledger.Engine
	parties  repository.PartyRepository
	media    repository.MediaRepository
	metadata *provider.MetadataClient
	limiter  *guard.RateLimiter
	idem     *guard.IdempotencyGuard
	store    projection.Store
	hub      *infra.WSHub
	logger   *slog.Logger
}

// NewBidService creates a BidService.
func NewBidService(
	pool *pgxpool.Pool,
	engine *ledger.Engine,
	parties repository.PartyRepository,
	media repository.MediaRepository,
	metadata *provider.MetadataClient,
	limiter *guard.RateLimiter,
	idem *guard.IdempotencyGuard,
	store projection.Store,
	hub *infra.WSHub,
	logger *slog.Logger,
) *BidService {
	return &BidService{
		pool:     pool,
		engine:   engine,
		parties:  parties,
		media:    media,
		metadata: metadata,
		limiter:  limiter,
		idem:     idem,
		store:    store,
		hub:      hub,
		logger:   logger,
	}
}

// PlaceBid runs the full bid command. idemKey is the client's optional
// Idempotency-Key; a duplicate key is rejected before any money moves.
func (s *BidService) PlaceBid(ctx context.Context, params domain.PlaceBidParams, idemKey string) (*domain.PlaceBidResult, error) {
	if res := s.limiter.Check(ctx, params.UserID.String()); !res.Allowed {
		return nil, &domain.AppError{Code: "RATE_LIMITED", Message: res.Reason, Status: 429}
	}
	if res := s.idem.Check(ctx, idemKey); !res.Allowed {
		return nil, domain.ErrConflict(res.Reason)
	}

	result, err := s.placeBid(ctx, params)
	if err != nil {
		// A failed command never consumed the key; let the client retry.
		s.idem.Remove(idemKey)
		return nil, err
	}
	return result, nil
}

func (s *BidService) placeBid(ctx context.Context, params domain.PlaceBidParams) (*domain.PlaceBidResult, error) {
	party, err := s.parties.FindByID(ctx, s.pool, params.PartyID)
	if err != nil {
		return nil, domain.ErrInternal("find party", err)
	}
	if party == nil {
		return nil, domain.ErrNotFound("party", params.PartyID.String())
	}
	if party.Status != domain.PartyLive {
		return nil, domain.ErrConflict(fmt.Sprintf("party is %s, bids require a live party", party.Status))
	}

	eval := policy.EvaluateBidAdmission(policy.DefaultBidAdmission(party.MinimumBid), params.Amount)
	if !eval.Allowed {
		// Non-positive and below-minimum amounts are input validation;
		// only the platform cap surfaces as a policy rejection.
		if eval.BreachedRule == policy.RulePositiveAmount || eval.BreachedRule == policy.RulePartyMinimum {
			return nil, domain.ErrValidation(fmt.Sprintf("bid breaches %s (%d)", eval.BreachedRule, eval.RuleValue))
		}
		return nil, &domain.AppError{
			Code:    "BID_REJECTED",
			Message: fmt.Sprintf("bid breaches %s (%d)", eval.BreachedRule, eval.RuleValue),
			Status:  422,
		}
	}

	if err := s.ensureMedia(ctx, params); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.engine.ExecutePlaceBid(ctx, tx, party.MinimumBid, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit place bid", err)
	}

	if eval.HighValue {
		s.logger.Info("high value bid placed",
			"bid_id", result.Bid.ID,
			"user_id", params.UserID,
			"amount", params.Amount)
	}

	s.hub.PublishToParty(params.PartyID.String(), "queue.updated", result.Entry)
	if result.OutbidUser != nil {
		s.hub.PublishToUser(result.OutbidUser.String(), "bid.outbid", map[string]string{
			"party_id": params.PartyID.String(),
			"media_id": params.MediaID.String(),
		})
	}

	// Best-effort cache refresh; the DB row is the source of truth.
	if err := projection.UpdateBalance(ctx, s.store, projection.BalanceProjection{
		UserID:   result.Wallet.ID.String(),
		Balance:  result.Wallet.Balance,
		Currency: result.Wallet.Currency,
	}); err != nil {
		s.logger.Warn("balance projection update failed", "error", err)
	}

	return result, nil
}

// ensureMedia creates the media row on the first bid ever placed on it,
// enriched from the metadata provider. Creation is idempotent so two
// concurrent first bids cannot fail on the insert.
func (s *BidService) ensureMedia(ctx context.Context, params domain.PlaceBidParams) error {
	existing, err := s.media.FindByID(ctx, s.pool, params.MediaID)
	if err != nil {
		return domain.ErrInternal("find media", err)
	}
	if existing != nil {
		return nil
	}

	meta := s.metadata.Fetch(ctx, params.MediaID.String())
	now := time.Now()
	m := &domain.Media{
		ID:              params.MediaID,
		Title:           meta.Title,
		Artist:          meta.Artist,
		DurationSeconds: meta.DurationSeconds,
		CoverURL:        meta.CoverURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.media.Create(ctx, s.pool, m); err != nil {
		return domain.ErrInternal("create media", err)
	}
	return nil
}
