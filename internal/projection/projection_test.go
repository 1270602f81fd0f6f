package projection

import (
	"context"
	"testing"
	"time"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SetAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	err := store.Set(ctx, "k1", []byte("hello"), 0)
	require.NoError(t, err)

	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)
}

func TestInMemoryStore_KeyNotFound(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestInMemoryStore_TTLExpiry(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), 1*time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, err := store.Get(ctx, "k1")
	assert.Error(t, err)
}

func TestBalanceProjection_RoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	userID := uuid.New().String()

	err := UpdateBalance(ctx, store, BalanceProjection{
		UserID:   userID,
		Balance:  2500,
		Currency: "EUR",
	})
	require.NoError(t, err)

	p, err := GetBalance(ctx, store, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), p.Balance)
	assert.NotEmpty(t, p.UpdatedAt)

	require.NoError(t, InvalidateBalance(ctx, store, userID))
	_, err = GetBalance(ctx, store, userID)
	assert.Error(t, err)
}

func TestBuildChart_OrdersByAggregateDesc(t *testing.T) {
	small := domain.Media{ID: uuid.New(), Title: "A", GlobalAggregate: 100}
	big := domain.Media{ID: uuid.New(), Title: "B", GlobalAggregate: 900}
	mid := domain.Media{ID: uuid.New(), Title: "C", GlobalAggregate: 500}

	chart := BuildChart([]domain.Media{small, big, mid})
	require.Len(t, chart.Entries, 3)
	assert.Equal(t, big.ID.String(), chart.Entries[0].MediaID)
	assert.Equal(t, mid.ID.String(), chart.Entries[1].MediaID)
	assert.Equal(t, small.ID.String(), chart.Entries[2].MediaID)
	assert.Equal(t, string(domain.EntryQueued), chart.Entries[0].Status)
	assert.NotEmpty(t, chart.RefreshedAt)
}

func TestBuildChart_TieBreaksByMediaID(t *testing.T) {
	a := domain.Media{ID: uuid.New(), GlobalAggregate: 500}
	b := domain.Media{ID: uuid.New(), GlobalAggregate: 500}

	first := BuildChart([]domain.Media{a, b})
	second := BuildChart([]domain.Media{b, a})
	assert.Equal(t, first.Entries[0].MediaID, second.Entries[0].MediaID)
}

func TestChart_StoreRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	bidder := uuid.New()
	media := domain.Media{
		ID:              uuid.New(),
		Title:           "Track",
		Artist:          "Artist",
		GlobalAggregate: 1500,
		TopBidAmount:    900,
		TopBidderID:     &bidder,
	}

	chart := BuildChart([]domain.Media{media})
	require.NoError(t, SetJSON(ctx, store, "projection:chart:global", chart, 0))

	got, err := GetChart(ctx, store)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, int64(1500), got.Entries[0].Aggregate)
	require.NotNil(t, got.Entries[0].TopBidderID)
	assert.Equal(t, bidder.String(), *got.Entries[0].TopBidderID)
}
