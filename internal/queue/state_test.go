package queue

import (
	"testing"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to domain.EntryStatus
		ok       bool
	}{
		{domain.EntryQueued, domain.EntryPlaying, true},
		{domain.EntryQueued, domain.EntryPlayed, true},
		{domain.EntryQueued, domain.EntryVetoed, true},
		{domain.EntryPlaying, domain.EntryQueued, true},
		{domain.EntryPlaying, domain.EntryPlayed, true},

		{domain.EntryPlaying, domain.EntryVetoed, false},
		{domain.EntryPlayed, domain.EntryQueued, false},
		{domain.EntryPlayed, domain.EntryPlaying, false},
		{domain.EntryPlayed, domain.EntryVetoed, false},
		{domain.EntryVetoed, domain.EntryQueued, false},
		{domain.EntryVetoed, domain.EntryPlaying, false},
		{domain.EntryVetoed, domain.EntryPlayed, false},
		{domain.EntryQueued, domain.EntryQueued, false},
		{domain.EntryStatus("bogus"), domain.EntryQueued, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestGuard_ReturnsInvalidTransition(t *testing.T) {
	err := Guard(domain.EntryVetoed, domain.EntryQueued)
	require.Error(t, err)

	appErr, ok := err.(*domain.AppError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_TRANSITION", appErr.Code)

	assert.NoError(t, Guard(domain.EntryQueued, domain.EntryPlaying))
}

func TestStatusPriority_Ordering(t *testing.T) {
	assert.Less(t, StatusPriority(domain.EntryPlaying), StatusPriority(domain.EntryQueued))
	assert.Less(t, StatusPriority(domain.EntryQueued), StatusPriority(domain.EntryPlayed))
	assert.Less(t, StatusPriority(domain.EntryPlayed), StatusPriority(domain.EntryVetoed))
	assert.Greater(t, StatusPriority(domain.EntryStatus("bogus")), StatusPriority(domain.EntryVetoed))
}
