package repository

import (
	"context"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// WalletRepository provides access to users (the per-user wallet rows).
type WalletRepository interface {
	// FindByID returns a user by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the user.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)

	// Create inserts a new user with an opening balance.
	Create(ctx context.Context, db DBTX, user *domain.User) error

	// ApplyDelta atomically applies a signed balance change with
	// server-side arithmetic and returns the updated row. The CHECK
	// constraint on the balance column backstops negative balances.
	ApplyDelta(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64) (*domain.User, error)
}

// TransactionRepository provides access to wallet_transactions.
type TransactionRepository interface {
	// Insert creates a new wallet ledger entry with a balance snapshot.
	Insert(ctx context.Context, db DBTX, params domain.PostWalletEntryParams, balanceAfter int64) (*domain.WalletTransaction, error)

	// ListByUser returns wallet entries for a user, newest first, with
	// cursor-based pagination.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, cursor *string, limit int) ([]domain.WalletTransaction, error)
}

// BidRepository provides access to the append-mostly bids table.
type BidRepository interface {
	// Insert appends a new active bid.
	Insert(ctx context.Context, db DBTX, bid *domain.Bid) error

	// FindActiveForUpdate returns all active bids for (media, party) with
	// their rows locked, so the veto transaction sees a consistent
	// snapshot that no concurrent PlaceBid can change underneath it.
	FindActiveForUpdate(ctx context.Context, tx pgx.Tx, mediaID, partyID uuid.UUID) ([]domain.Bid, error)

	// FindActiveByMedia returns all active bids for a media across every
	// party, used for the global top-bid re-scan after a veto.
	FindActiveByMedia(ctx context.Context, db DBTX, mediaID uuid.UUID) ([]domain.Bid, error)

	// MarkVetoed flips the given bids from active to vetoed.
	MarkVetoed(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error
}

// MediaRepository provides access to media and its global aggregates.
type MediaRepository interface {
	// FindByID returns a media item by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Media, error)

	// LockForUpdate locks the media row for aggregate mutation.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Media, error)

	// Create inserts a media item (zero aggregates).
	Create(ctx context.Context, db DBTX, media *domain.Media) error

	// UpdateAggregates writes the global aggregate and top-bid fields and
	// returns the updated row.
	UpdateAggregates(ctx context.Context, tx pgx.Tx, id uuid.UUID, aggregate int64, top domain.TopBid) (*domain.Media, error)

	// ListFunded returns every media with global_aggregate > 0, the
	// candidate set for the global chart projection.
	ListFunded(ctx context.Context, db DBTX) ([]domain.Media, error)
}

// PartyRepository provides access to parties.
type PartyRepository interface {
	// FindByID returns a party by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Party, error)

	// Create inserts a new party.
	Create(ctx context.Context, db DBTX, party *domain.Party) error
}

// QueueRepository provides access to party_queue_entries.
type QueueRepository interface {
	// LockEntry locks the entry row for (party, media), or nil if absent.
	LockEntry(ctx context.Context, tx pgx.Tx, partyID, mediaID uuid.UUID) (*domain.PartyQueueEntry, error)

	// Upsert creates the entry on first bid or returns the locked existing
	// row (INSERT ... ON CONFLICT).
	Upsert(ctx context.Context, tx pgx.Tx, entry *domain.PartyQueueEntry) (*domain.PartyQueueEntry, error)

	// UpdateAggregates writes the party-scoped aggregate and top-bid
	// fields and returns the updated row.
	UpdateAggregates(ctx context.Context, tx pgx.Tx, id uuid.UUID, aggregate int64, top domain.TopBid) (*domain.PartyQueueEntry, error)

	// UpdateStatus applies a state machine transition with its timestamps.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, change domain.EntryStatusChange) (*domain.PartyQueueEntry, error)

	// FindPlaying returns the currently playing entry for a party, or nil.
	FindPlaying(ctx context.Context, tx pgx.Tx, partyID uuid.UUID) (*domain.PartyQueueEntry, error)

	// ListByParty returns every entry of a party (all statuses).
	ListByParty(ctx context.Context, db DBTX, partyID uuid.UUID) ([]domain.PartyQueueEntry, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// state change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error
}
