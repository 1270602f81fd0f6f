package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/ledger"
	"github.com/crowdcue/platform/internal/projection"
	"github.com/crowdcue/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WalletService handles deposits and wallet reads.
type WalletService struct {
	pool    *pgxpool.Pool
	engine  *ledger.Engine
	wallets repository.WalletRepository
	txRepo  repository.TransactionRepository
	store   projection.Store
	logger  *slog.Logger
}

// NewWalletService creates a WalletService.
func NewWalletService(
	pool *pgxpool.Pool,
	engine *ledger.Engine,
	wallets repository.WalletRepository,
	txRepo repository.TransactionRepository,
	store projection.Store,
	logger *slog.Logger,
) *WalletService {
	return &WalletService{
		pool:    pool,
		engine:  engine,
		wallets: wallets,
		txRepo:  txRepo,
		store:   store,
		logger:  logger,
	}
}

// Deposit credits a wallet. Payment intake (card processing, webhooks)
// lives upstream; this is the ledger landing point for settled funds.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount int64, metadata json.RawMessage) (*domain.DepositResult, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.engine.ExecuteDeposit(ctx, tx, domain.DepositParams{
		UserID:   userID,
		Amount:   amount,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit deposit", err)
	}

	if err := projection.UpdateBalance(ctx, s.store, projection.BalanceProjection{
		UserID:   result.Wallet.ID.String(),
		Balance:  result.Wallet.Balance,
		Currency: result.Wallet.Currency,
	}); err != nil {
		s.logger.Warn("balance projection update failed", "error", err)
	}

	return result, nil
}

// Balance returns a user's wallet, serving the cached projection when it
// is fresh and falling back to the users row.
func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if cached, err := projection.GetBalance(ctx, s.store, userID.String()); err == nil {
		return &domain.User{
			ID:       userID,
			Balance:  cached.Balance,
			Currency: cached.Currency,
		}, nil
	}

	user, err := s.wallets.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find wallet", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}

	if err := projection.UpdateBalance(ctx, s.store, projection.BalanceProjection{
		UserID:   user.ID.String(),
		Balance:  user.Balance,
		Currency: user.Currency,
	}); err != nil {
		s.logger.Warn("balance projection update failed", "error", err)
	}
	return user, nil
}

// Transactions returns a page of a user's wallet ledger, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID uuid.UUID, cursor *string, limit int) ([]domain.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := s.txRepo.ListByUser(ctx, s.pool, userID, cursor, limit)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}
	return entries, nil
}
