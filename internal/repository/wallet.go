package repository

import (
	"context"
	"fmt"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type walletRepo struct{}

// NewWalletRepository returns a pgx-backed WalletRepository.
func NewWalletRepository() WalletRepository {
	return &walletRepo{}
}

const userColumns = `id, display_name, balance, currency, created_at, updated_at`

func (r *walletRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *walletRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1 FOR UPDATE`, id)
	return scanUser(row)
}

func (r *walletRepo) Create(ctx context.Context, db DBTX, user *domain.User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, display_name, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID,
		user.DisplayName,
		infra.Int64ToNumeric(user.Balance),
		user.Currency,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ApplyDelta uses server-side arithmetic so concurrent writers can never
// lose an increment; callers hold the row lock from LockForUpdate.
func (r *walletRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64) (*domain.User, error) {
	row := tx.QueryRow(ctx, `
		UPDATE users SET balance = balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING `+userColumns,
		infra.Int64ToNumeric(delta), userID)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var balNum pgtype.Numeric
	err := row.Scan(&u.ID, &u.DisplayName, &balNum, &u.Currency, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Balance, err = infra.NumericToInt64(balNum)
	if err != nil {
		return nil, fmt.Errorf("convert balance: %w", err)
	}

	return &u, nil
}
