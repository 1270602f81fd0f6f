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

type mediaRepo struct{}

// NewMediaRepository returns a pgx-backed MediaRepository.
func NewMediaRepository() MediaRepository {
	return &mediaRepo{}
}

const mediaColumns = `id, title, artist, duration_seconds, cover_url, global_aggregate, top_bid_amount, top_bidder_id, created_at, updated_at`

func (r *mediaRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Media, error) {
	row := db.QueryRow(ctx, `
		SELECT `+mediaColumns+`
		FROM media WHERE id = $1`, id)
	return scanMedia(row)
}

func (r *mediaRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Media, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+mediaColumns+`
		FROM media WHERE id = $1 FOR UPDATE`, id)
	return scanMedia(row)
}

func (r *mediaRepo) Create(ctx context.Context, db DBTX, media *domain.Media) error {
	_, err := db.Exec(ctx, `
		INSERT INTO media (id, title, artist, duration_seconds, cover_url,
			global_aggregate, top_bid_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		media.ID,
		media.Title,
		media.Artist,
		media.DurationSeconds,
		media.CoverURL,
		infra.Int64ToNumeric(media.GlobalAggregate),
		infra.Int64ToNumeric(media.TopBidAmount),
		media.CreatedAt,
		media.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

func (r *mediaRepo) UpdateAggregates(ctx context.Context, tx pgx.Tx, id uuid.UUID, aggregate int64, top domain.TopBid) (*domain.Media, error) {
	row := tx.QueryRow(ctx, `
		UPDATE media
		SET global_aggregate = $1, top_bid_amount = $2, top_bidder_id = $3, updated_at = now()
		WHERE id = $4
		RETURNING `+mediaColumns,
		infra.Int64ToNumeric(aggregate),
		infra.Int64ToNumeric(top.Amount),
		top.BidderID,
		id)
	return scanMedia(row)
}

// ListFunded is the only query that scales with catalog size rather than
// one party's size; the chart projection calls it on a refresh interval.
func (r *mediaRepo) ListFunded(ctx context.Context, db DBTX) ([]domain.Media, error) {
	rows, err := db.Query(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE global_aggregate > 0
		ORDER BY global_aggregate DESC`)
	if err != nil {
		return nil, fmt.Errorf("query funded media: %w", err)
	}
	defer rows.Close()

	var items []domain.Media
	for rows.Next() {
		m, err := scanMediaValues(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func scanMedia(row pgx.Row) (*domain.Media, error) {
	m, err := scanMediaValues(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func scanMediaValues(row pgx.Row) (*domain.Media, error) {
	var m domain.Media
	var aggNum, topNum pgtype.Numeric
	err := row.Scan(
		&m.ID, &m.Title, &m.Artist, &m.DurationSeconds, &m.CoverURL,
		&aggNum, &topNum, &m.TopBidderID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan media: %w", err)
	}

	m.GlobalAggregate, err = infra.NumericToInt64(aggNum)
	if err != nil {
		return nil, fmt.Errorf("convert global_aggregate: %w", err)
	}
	m.TopBidAmount, err = infra.NumericToInt64(topNum)
	if err != nil {
		return nil, fmt.Errorf("convert top_bid_amount: %w", err)
	}

	return &m, nil
}
