package queue

import (
	"sort"

	"github.com/crowdcue/platform/internal/domain"
)

// SortEntries orders a queue for rendering: status priority ascending
// (playing < queued < played < vetoed), then aggregate descending. The
// tertiary keys (queued_at ascending, then media ID) make the rendered
// payload reproducible bit-for-bit when aggregates tie.
func SortEntries(entries []domain.PartyQueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if pa, pb := StatusPriority(a.Status), StatusPriority(b.Status); pa != pb {
			return pa < pb
		}
		if a.Aggregate != b.Aggregate {
			return a.Aggregate > b.Aggregate
		}
		if !a.QueuedAt.Equal(b.QueuedAt) {
			return a.QueuedAt.Before(b.QueuedAt)
		}
		return a.MediaID.String() < b.MediaID.String()
	})
}
