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

type bidRepo struct{}

// NewBidRepository returns a pgx-backed BidRepository.
func NewBidRepository() BidRepository {
	return &bidRepo{}
}

const bidColumns = `id, user_id, party_id, media_id, amount, scope, status, created_at, vetoed_at`

func (r *bidRepo) Insert(ctx context.Context, db DBTX, bid *domain.Bid) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bids (id, user_id, party_id, media_id, amount, scope, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bid.ID,
		bid.UserID,
		bid.PartyID,
		bid.MediaID,
		infra.Int64ToNumeric(bid.Amount),
		string(bid.Scope),
		string(bid.Status),
		bid.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

// FindActiveForUpdate locks the active rows so the veto refund works from a
// snapshot no concurrent PlaceBid can change.
func (r *bidRepo) FindActiveForUpdate(ctx context.Context, tx pgx.Tx, mediaID, partyID uuid.UUID) ([]domain.Bid, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+bidColumns+`
		FROM bids
		WHERE media_id = $1 AND party_id = $2 AND status = 'active'
		ORDER BY created_at ASC
		FOR UPDATE`, mediaID, partyID)
	if err != nil {
		return nil, fmt.Errorf("query active bids: %w", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

func (r *bidRepo) FindActiveByMedia(ctx context.Context, db DBTX, mediaID uuid.UUID) ([]domain.Bid, error) {
	rows, err := db.Query(ctx, `
		SELECT `+bidColumns+`
		FROM bids
		WHERE media_id = $1 AND status = 'active'
		ORDER BY created_at ASC`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("query media bids: %w", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

func (r *bidRepo) MarkVetoed(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `
		UPDATE bids SET status = 'vetoed', vetoed_at = now()
		WHERE id = ANY($1) AND status = 'active'`, ids)
	if err != nil {
		return fmt.Errorf("mark bids vetoed: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("mark bids vetoed: expected %d rows, updated %d", len(ids), tag.RowsAffected())
	}
	return nil
}

func collectBids(rows pgx.Rows) ([]domain.Bid, error) {
	var bids []domain.Bid
	for rows.Next() {
		var b domain.Bid
		var amountNum pgtype.Numeric
		err := rows.Scan(
			&b.ID, &b.UserID, &b.PartyID, &b.MediaID,
			&amountNum, &b.Scope, &b.Status, &b.CreatedAt, &b.VetoedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bid row: %w", err)
		}
		b.Amount, err = infra.NumericToInt64(amountNum)
		if err != nil {
			return nil, fmt.Errorf("convert bid amount: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}
