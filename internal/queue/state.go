// Package queue implements the per-entry playback state machine and the
// queue rendering sort contract.
package queue

import (
	"github.com/crowdcue/platform/internal/domain"
)

// transitions is the closed transition table. Anything not listed is a
// guard violation.
//
//	queued  → playing, played, vetoed
//	playing → queued (skip back), played
//
// played and vetoed are terminal. queued → played is legal because a
// client may report completion without ever reporting a play start.
// vetoed → queued (un-veto) is deliberately absent: refunds have already
// been issued, so restoring the entry would leave its aggregates pointing
// at money that no longer backs them; a fresh bid revives the entry
// instead.
var transitions = map[domain.EntryStatus]map[domain.EntryStatus]bool{
	domain.EntryQueued: {
		domain.EntryPlaying: true,
		domain.EntryPlayed:  true,
		domain.EntryVetoed:  true,
	},
	domain.EntryPlaying: {
		domain.EntryQueued: true,
		domain.EntryPlayed: true,
	},
	domain.EntryPlayed: {},
	domain.EntryVetoed: {},
}

// CanTransition reports whether from → to is a legal entry transition.
func CanTransition(from, to domain.EntryStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// Guard returns nil if from → to is legal, or the InvalidTransition
// domain error otherwise.
func Guard(from, to domain.EntryStatus) error {
	if !CanTransition(from, to) {
		return domain.ErrInvalidTransition(string(from), string(to))
	}
	return nil
}

// StatusPriority is the primary render sort key: playing first, then
// queued, played, vetoed.
func StatusPriority(s domain.EntryStatus) int {
	switch s {
	case domain.EntryPlaying:
		return 0
	case domain.EntryQueued:
		return 1
	case domain.EntryPlayed:
		return 2
	case domain.EntryVetoed:
		return 3
	}
	return 4
}
