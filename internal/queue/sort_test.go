package queue

import (
	"testing"
	"time"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func entry(status domain.EntryStatus, aggregate int64, queuedAt time.Time) domain.PartyQueueEntry {
	return domain.PartyQueueEntry{
		ID:        uuid.New(),
		MediaID:   uuid.New(),
		Aggregate: aggregate,
		Status:    status,
		QueuedAt:  queuedAt,
	}
}

func TestSortEntries_StatusThenAggregate(t *testing.T) {
	base := time.Now()

	playing := entry(domain.EntryPlaying, 100, base)
	bigQueued := entry(domain.EntryQueued, 5000, base)
	smallQueued := entry(domain.EntryQueued, 10, base)
	played := entry(domain.EntryPlayed, 9000, base)
	vetoed := entry(domain.EntryVetoed, 9999, base)

	entries := []domain.PartyQueueEntry{vetoed, smallQueued, played, bigQueued, playing}
	SortEntries(entries)

	assert.Equal(t, playing.ID, entries[0].ID, "playing renders first regardless of aggregate")
	assert.Equal(t, bigQueued.ID, entries[1].ID)
	assert.Equal(t, smallQueued.ID, entries[2].ID)
	assert.Equal(t, played.ID, entries[3].ID)
	assert.Equal(t, vetoed.ID, entries[4].ID, "vetoed renders last even with the largest aggregate")
}

func TestSortEntries_TieBreaksByQueuedAtThenMediaID(t *testing.T) {
	base := time.Now()

	older := entry(domain.EntryQueued, 500, base.Add(-time.Hour))
	newer := entry(domain.EntryQueued, 500, base)

	entries := []domain.PartyQueueEntry{newer, older}
	SortEntries(entries)
	assert.Equal(t, older.ID, entries[0].ID, "equal aggregates order by queue age")

	// Identical timestamps fall through to the media ID so two renders of
	// the same queue are byte-identical.
	a := entry(domain.EntryQueued, 500, base)
	b := entry(domain.EntryQueued, 500, base)
	first := []domain.PartyQueueEntry{a, b}
	second := []domain.PartyQueueEntry{b, a}
	SortEntries(first)
	SortEntries(second)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
}

func TestSortEntries_Empty(t *testing.T) {
	var entries []domain.PartyQueueEntry
	SortEntries(entries)
	assert.Empty(t, entries)
}
