package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/infra"
	"github.com/crowdcue/platform/internal/projection"
	"github.com/crowdcue/platform/internal/queue"
	"github.com/crowdcue/platform/internal/repository"
	"github.com/crowdcue/platform/internal/settlement"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// vetoRetries is how many times a veto is re-run when Postgres aborts it
// with a deadlock or serialization failure before giving up.
const vetoRetries = 3

// PartyService orchestrates party lifecycle: queue reads, playback
// transitions, and the veto/refund command.
type PartyService struct {
	pool      *pgxpool.Pool
	parties   repository.PartyRepository
	queueRepo repository.QueueRepository
	outbox    repository.OutboxRepository
	veto      *settlement.VetoSettlement
	hub       *infra.WSHub
	store     projection.Store
	logger    *slog.Logger
}

// NewPartyService creates a PartyService.
func NewPartyService(
	pool *pgxpool.Pool,
	parties repository.PartyRepository,
	queueRepo repository.QueueRepository,
	outbox repository.OutboxRepository,
	veto *settlement.VetoSettlement,
	hub *infra.WSHub,
	store projection.Store,
	logger *slog.Logger,
) *PartyService {
	return &PartyService{
		pool:      pool,
		parties:   parties,
		queueRepo: queueRepo,
		outbox:    outbox,
		veto:      veto,
		hub:       hub,
		store:     store,
		logger:    logger,
	}
}

// CreateParty registers a new party hosted by hostID.
func (s *PartyService) CreateParty(ctx context.Context, hostID uuid.UUID, name string, minimumBid int64) (*domain.Party, error) {
	if name == "" {
		return nil, domain.ErrValidation("party name is required")
	}
	if minimumBid < 0 {
		return nil, domain.ErrValidation("minimum bid must not be negative")
	}

	party := &domain.Party{
		ID:         uuid.New(),
		HostID:     hostID,
		Name:       name,
		MinimumBid: minimumBid,
		Status:     domain.PartyLive,
		CreatedAt:  time.Now(),
	}
	if err := s.parties.Create(ctx, s.pool, party); err != nil {
		return nil, domain.ErrInternal("create party", err)
	}
	return party, nil
}

// GetParty returns a party by ID.
func (s *PartyService) GetParty(ctx context.Context, partyID uuid.UUID) (*domain.Party, error) {
	party, err := s.parties.FindByID(ctx, s.pool, partyID)
	if err != nil {
		return nil, domain.ErrInternal("find party", err)
	}
	if party == nil {
		return nil, domain.ErrNotFound("party", partyID.String())
	}
	return party, nil
}

// Queue returns every entry of a party in playback order: the playing
// entry first, then queued by aggregate, then played, then vetoed.
func (s *PartyService) Queue(ctx context.Context, partyID uuid.UUID) ([]domain.PartyQueueEntry, error) {
	if _, err := s.GetParty(ctx, partyID); err != nil {
		return nil, err
	}
	entries, err := s.queueRepo.ListByParty(ctx, s.pool, partyID)
	if err != nil {
		return nil, domain.ErrInternal("list queue", err)
	}
	queue.SortEntries(entries)
	return entries, nil
}

// Play promotes a queued entry to playing. Any currently playing entry is
// demoted back to queued in the same transaction, so at most one entry per
// party is ever playing.
func (s *PartyService) Play(ctx context.Context, partyID, mediaID, actorID uuid.UUID) (*domain.PartyQueueEntry, error) {
	party, err := s.hostGuard(ctx, partyID, actorID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.queueRepo.FindPlaying(ctx, tx, party.ID)
	if err != nil {
		return nil, domain.ErrInternal("find playing entry", err)
	}
	if current != nil && current.MediaID != mediaID {
		if err := queue.Guard(current.Status, domain.EntryQueued); err != nil {
			return nil, err
		}
		if _, err := s.queueRepo.UpdateStatus(ctx, tx, current.ID, domain.EntryStatusChange{
			Status: domain.EntryQueued,
		}); err != nil {
			return nil, domain.ErrInternal("demote playing entry", err)
		}
	}

	entry, err := s.lockEntry(ctx, tx, party.ID, mediaID)
	if err != nil {
		return nil, err
	}
	if err := queue.Guard(entry.Status, domain.EntryPlaying); err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := s.queueRepo.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusChange{
		Status:   domain.EntryPlaying,
		PlayedAt: &now,
	})
	if err != nil {
		return nil, domain.ErrInternal("promote entry", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewEntryTransitionEvent(updated, domain.EventEntryPlaying)); err != nil {
		return nil, domain.ErrInternal("outbox entry playing", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit play", err)
	}
	s.hub.PublishToParty(party.ID.String(), "entry.playing", updated)
	return updated, nil
}

// Complete marks the playing entry as played (terminal).
func (s *PartyService) Complete(ctx context.Context, partyID, mediaID, actorID uuid.UUID) (*domain.PartyQueueEntry, error) {
	party, err := s.hostGuard(ctx, partyID, actorID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	entry, err := s.lockEntry(ctx, tx, party.ID, mediaID)
	if err != nil {
		return nil, err
	}
	if err := queue.Guard(entry.Status, domain.EntryPlayed); err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := s.queueRepo.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusChange{
		Status:      domain.EntryPlayed,
		CompletedAt: &now,
	})
	if err != nil {
		return nil, domain.ErrInternal("complete entry", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewEntryTransitionEvent(updated, domain.EventEntryPlayed)); err != nil {
		return nil, domain.ErrInternal("outbox entry played", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit complete", err)
	}
	s.hub.PublishToParty(party.ID.String(), "entry.played", updated)
	return updated, nil
}

// Skip demotes the playing entry back to queued without playing another.
func (s *PartyService) Skip(ctx context.Context, partyID, mediaID, actorID uuid.UUID) (*domain.PartyQueueEntry, error) {
	party, err := s.hostGuard(ctx, partyID, actorID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	entry, err := s.lockEntry(ctx, tx, party.ID, mediaID)
	if err != nil {
		return nil, err
	}
	if err := queue.Guard(entry.Status, domain.EntryQueued); err != nil {
		return nil, err
	}

	updated, err := s.queueRepo.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusChange{
		Status: domain.EntryQueued,
	})
	if err != nil {
		return nil, domain.ErrInternal("skip entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit skip", err)
	}
	s.hub.PublishToParty(party.ID.String(), "entry.skipped", updated)
	return updated, nil
}

// Veto runs the veto/refund compensating transaction. Deadlocks and
// serialization aborts are retried; a transaction that still cannot
// complete surfaces as PARTIAL_REFUND_FAILURE and nothing is committed.
func (s *PartyService) Veto(ctx context.Context, params domain.VetoParams) (*domain.VetoResult, error) {
	party, err := s.GetParty(ctx, params.PartyID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= vetoRetries; attempt++ {
		result, err := s.vetoOnce(ctx, party, params)
		if err == nil {
			s.hub.PublishToParty(party.ID.String(), "entry.vetoed", result.Entry)
			for _, g := range result.Refunds {
				s.hub.PublishToUser(g.UserID.String(), "bid.refunded", g)
				// Drop stale cached balances; the credit already committed.
				if err := projection.InvalidateBalance(ctx, s.store, g.UserID.String()); err != nil {
					s.logger.Warn("balance invalidation failed", "user_id", g.UserID, "error", err)
				}
			}
			return result, nil
		}
		if !retryablePgError(err) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("veto aborted by postgres, retrying",
			"party_id", params.PartyID,
			"media_id", params.MediaID,
			"attempt", attempt+1,
			"error", err)
	}
	return nil, domain.ErrPartialRefund(params.MediaID.String(), lastErr)
}

func (s *PartyService) vetoOnce(ctx context.Context, party *domain.Party, params domain.VetoParams) (*domain.VetoResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.veto.ExecuteVeto(ctx, tx, party, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit veto", err)
	}
	return result, nil
}

func (s *PartyService) hostGuard(ctx context.Context, partyID, actorID uuid.UUID) (*domain.Party, error) {
	party, err := s.GetParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if !party.IsHost(actorID) {
		return nil, domain.ErrForbidden("only the party host may control playback")
	}
	return party, nil
}

func (s *PartyService) lockEntry(ctx context.Context, tx pgx.Tx, partyID, mediaID uuid.UUID) (*domain.PartyQueueEntry, error) {
	entry, err := s.queueRepo.LockEntry(ctx, tx, partyID, mediaID)
	if err != nil {
		return nil, domain.ErrInternal("lock queue entry", err)
	}
	if entry == nil {
		return nil, domain.ErrNotFound("queue entry", mediaID.String())
	}
	return entry, nil
}

// retryablePgError reports whether err is a deadlock (40P01) or
// serialization failure (40001) worth re-running the transaction for.
func retryablePgError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40P01" || pgErr.Code == "40001"
	}
	return false
}
