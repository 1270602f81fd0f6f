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

type queueRepo struct{}

// NewQueueRepository returns a pgx-backed QueueRepository.
func NewQueueRepository() QueueRepository {
	return &queueRepo{}
}

const entryColumns = `id, party_id, media_id, aggregate, top_bid_amount, top_bidder_id,
	status, queued_at, played_at, completed_at, vetoed_at, vetoed_by`

func (r *queueRepo) LockEntry(ctx context.Context, tx pgx.Tx, partyID, mediaID uuid.UUID) (*domain.PartyQueueEntry, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM party_queue_entries
		WHERE party_id = $1 AND media_id = $2
		FOR UPDATE`, partyID, mediaID)
	return scanEntry(row)
}

// Upsert creates the (party, media) entry the first time a bid lands, or
// locks and returns the existing row. The DO UPDATE is a no-op write that
// makes ON CONFLICT return the row under lock.
func (r *queueRepo) Upsert(ctx context.Context, tx pgx.Tx, entry *domain.PartyQueueEntry) (*domain.PartyQueueEntry, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO party_queue_entries
		  (id, party_id, media_id, aggregate, top_bid_amount, top_bidder_id, status, queued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (party_id, media_id)
		DO UPDATE SET party_id = EXCLUDED.party_id
		RETURNING `+entryColumns,
		entry.ID,
		entry.PartyID,
		entry.MediaID,
		infra.Int64ToNumeric(entry.Aggregate),
		infra.Int64ToNumeric(entry.TopBidAmount),
		entry.TopBidderID,
		string(entry.Status),
		entry.QueuedAt,
	)
	return scanEntry(row)
}

func (r *queueRepo) UpdateAggregates(ctx context.Context, tx pgx.Tx, id uuid.UUID, aggregate int64, top domain.TopBid) (*domain.PartyQueueEntry, error) {
	row := tx.QueryRow(ctx, `
		UPDATE party_queue_entries
		SET aggregate = $1, top_bid_amount = $2, top_bidder_id = $3
		WHERE id = $4
		RETURNING `+entryColumns,
		infra.Int64ToNumeric(aggregate),
		infra.Int64ToNumeric(top.Amount),
		top.BidderID,
		id)
	return scanEntry(row)
}

func (r *queueRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, change domain.EntryStatusChange) (*domain.PartyQueueEntry, error) {
	row := tx.QueryRow(ctx, `
		UPDATE party_queue_entries
		SET status = $1,
		    queued_at = COALESCE($2, queued_at),
		    played_at = COALESCE($3, played_at),
		    completed_at = COALESCE($4, completed_at),
		    vetoed_at = CASE WHEN $1 = 'queued' THEN NULL ELSE COALESCE($5, vetoed_at) END,
		    vetoed_by = CASE WHEN $1 = 'queued' THEN NULL ELSE COALESCE($6, vetoed_by) END
		WHERE id = $7
		RETURNING `+entryColumns,
		string(change.Status),
		change.QueuedAt,
		change.PlayedAt,
		change.CompletedAt,
		change.VetoedAt,
		change.VetoedBy,
		id)
	return scanEntry(row)
}

func (r *queueRepo) FindPlaying(ctx context.Context, tx pgx.Tx, partyID uuid.UUID) (*domain.PartyQueueEntry, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM party_queue_entries
		WHERE party_id = $1 AND status = 'playing'
		FOR UPDATE`, partyID)
	return scanEntry(row)
}

func (r *queueRepo) ListByParty(ctx context.Context, db DBTX, partyID uuid.UUID) ([]domain.PartyQueueEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT `+entryColumns+`
		FROM party_queue_entries
		WHERE party_id = $1`, partyID)
	if err != nil {
		return nil, fmt.Errorf("query queue entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.PartyQueueEntry
	for rows.Next() {
		e, err := scanEntryValues(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.PartyQueueEntry, error) {
	e, err := scanEntryValues(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func scanEntryValues(row pgx.Row) (*domain.PartyQueueEntry, error) {
	var e domain.PartyQueueEntry
	var aggNum, topNum pgtype.Numeric
	err := row.Scan(
		&e.ID, &e.PartyID, &e.MediaID,
		&aggNum, &topNum, &e.TopBidderID,
		&e.Status, &e.QueuedAt, &e.PlayedAt, &e.CompletedAt, &e.VetoedAt, &e.VetoedBy,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan queue entry: %w", err)
	}

	e.Aggregate, err = infra.NumericToInt64(aggNum)
	if err != nil {
		return nil, fmt.Errorf("convert aggregate: %w", err)
	}
	e.TopBidAmount, err = infra.NumericToInt64(topNum)
	if err != nil {
		return nil, fmt.Errorf("convert top_bid_amount: %w", err)
	}

	return &e, nil
}
