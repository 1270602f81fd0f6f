package ledger

import (
	"context"
	"fmt"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine provides the foundational wallet/bid ledger operations:
//  1. LockWalletForUpdate — row-level pessimistic lock on the user's wallet
//  2. PostWalletEntry — atomic balance change + append-only ledger insert
//
// Commands (place bid, deposit, veto settlement) compose these inside one
// pgx transaction, so the debit, the bid insert, the aggregate updates and
// the outbox event commit or roll back as a unit.
type Engine struct {
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	bids         repository.BidRepository
	media        repository.MediaRepository
	queue        repository.QueueRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	wallets repository.WalletRepository,
	transactions repository.TransactionRepository,
	bids repository.BidRepository,
	media repository.MediaRepository,
	queue repository.QueueRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		wallets:      wallets,
		transactions: transactions,
		bids:         bids,
		media:        media,
		queue:        queue,
		outbox:       outbox,
	}
}

// LockWalletForUpdate acquires a row-level lock and returns the user.
// Must be called within a transaction.
func (e *Engine) LockWalletForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.User, error) {
	user, err := e.wallets.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}

// PostWalletEntry atomically applies a balance delta and inserts a wallet
// ledger entry holding the post-update balance snapshot. Both writes run
// within the caller's transaction; callers must hold the wallet row lock.
func (e *Engine) PostWalletEntry(ctx context.Context, tx pgx.Tx, params domain.PostWalletEntryParams) (*domain.WalletTransaction, *domain.User, error) {
	updated, err := e.wallets.ApplyDelta(ctx, tx, params.UserID, params.Delta)
	if err != nil {
		return nil, nil, fmt.Errorf("apply balance delta: %w", err)
	}

	entry, err := e.transactions.Insert(ctx, tx, params, updated.Balance)
	if err != nil {
		return nil, nil, fmt.Errorf("insert wallet transaction: %w", err)
	}

	return entry, updated, nil
}
