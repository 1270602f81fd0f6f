package ledger

import (
	"context"
	"fmt"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecuteDeposit credits a wallet top-up. Payment intake happens outside
// this core; by the time this runs the money is already collected, so the
// credit cannot be rejected for business reasons.
func (e *Engine) ExecuteDeposit(ctx context.Context, tx pgx.Tx, params domain.DepositParams) (*domain.DepositResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	if _, err := e.LockWalletForUpdate(ctx, tx, params.UserID); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	entry, wallet, err := e.PostWalletEntry(ctx, tx, domain.PostWalletEntryParams{
		UserID:   params.UserID,
		Type:     domain.TxDeposit,
		Amount:   params.Amount,
		Delta:    params.Amount,
		Metadata: params.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("deposit post: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewWalletDepositEvent(entry)); err != nil {
		return nil, fmt.Errorf("deposit outbox: %w", err)
	}

	return &domain.DepositResult{Transaction: entry, Wallet: wallet}, nil
}
