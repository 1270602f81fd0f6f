package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const txColumns = `id, user_id, type, amount, balance_after, bid_id, party_id, metadata, created_at`

func (r *transactionRepo) Insert(ctx context.Context, db DBTX, params domain.PostWalletEntryParams, balanceAfter int64) (*domain.WalletTransaction, error) {
	meta := params.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	row := db.QueryRow(ctx, `
		INSERT INTO wallet_transactions
		  (user_id, type, amount, balance_after, bid_id, party_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+txColumns,
		params.UserID,
		string(params.Type),
		infra.Int64ToNumeric(params.Amount),
		infra.Int64ToNumeric(balanceAfter),
		params.BidID,
		params.PartyID,
		meta,
	)
	return scanWalletTransaction(row)
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, cursor *string, limit int) ([]domain.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = db.Query(ctx, `
			SELECT `+txColumns+`
			FROM wallet_transactions
			WHERE user_id = $1
			  AND (created_at, id) < ((SELECT created_at, id FROM wallet_transactions WHERE id = $2))
			ORDER BY created_at DESC, id DESC
			LIMIT $3`, userID, *cursor, limit)
	} else {
		rows, err = db.Query(ctx, `
			SELECT `+txColumns+`
			FROM wallet_transactions
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`, userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query wallet transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		tx, err := scanWalletTransactionValues(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func scanWalletTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	tx, err := scanWalletTransactionValues(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

func scanWalletTransactionValues(row pgx.Row) (*domain.WalletTransaction, error) {
	var tx domain.WalletTransaction
	var amountNum, balNum pgtype.Numeric
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type,
		&amountNum, &balNum,
		&tx.BidID, &tx.PartyID, &tx.Metadata, &tx.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan wallet transaction: %w", err)
	}

	tx.Amount, err = infra.NumericToInt64(amountNum)
	if err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	tx.BalanceAfter, err = infra.NumericToInt64(balNum)
	if err != nil {
		return nil, fmt.Errorf("convert balance_after: %w", err)
	}

	return &tx, nil
}
