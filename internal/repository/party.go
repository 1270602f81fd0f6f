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

type partyRepo struct{}

// NewPartyRepository returns a pgx-backed PartyRepository.
func NewPartyRepository() PartyRepository {
	return &partyRepo{}
}

func (r *partyRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Party, error) {
	row := db.QueryRow(ctx, `
		SELECT id, host_id, name, minimum_bid, status, created_at
		FROM parties WHERE id = $1`, id)

	var p domain.Party
	var minNum pgtype.Numeric
	err := row.Scan(&p.ID, &p.HostID, &p.Name, &minNum, &p.Status, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan party: %w", err)
	}

	p.MinimumBid, err = infra.NumericToInt64(minNum)
	if err != nil {
		return nil, fmt.Errorf("convert minimum_bid: %w", err)
	}

	return &p, nil
}

func (r *partyRepo) Create(ctx context.Context, db DBTX, party *domain.Party) error {
	_, err := db.Exec(ctx, `
		INSERT INTO parties (id, host_id, name, minimum_bid, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		party.ID,
		party.HostID,
		party.Name,
		infra.Int64ToNumeric(party.MinimumBid),
		string(party.Status),
		party.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}
