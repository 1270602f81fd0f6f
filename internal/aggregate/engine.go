// Package aggregate derives tip totals and top-bid marks from active-bid
// sets. The functions are pure; the ledger applies their results inside
// the same database transaction as the bid write, so the stored aggregates
// can never drift from the ledger under concurrency.
package aggregate

import (
	"github.com/crowdcue/platform/internal/domain"
)

// ApplyBid folds one new bid into an aggregate total and top-bid mark.
// The top bid is a high-water mark on creation: cheap, but not reversible,
// which is why the veto path recomputes instead of decrementing.
func ApplyBid(total int64, top domain.TopBid, bid *domain.Bid) (int64, domain.TopBid) {
	total += bid.Amount
	if bid.Amount > top.Amount {
		bidder := bid.UserID
		top = domain.TopBid{Amount: bid.Amount, BidderID: &bidder}
	}
	return total, top
}

// Sum totals the amounts of a bid set.
func Sum(bids []domain.Bid) int64 {
	var total int64
	for i := range bids {
		total += bids[i].Amount
	}
	return total
}

// RecomputeTop returns the true top bid over an active-bid set: the single
// largest amount and its owner, or the zero TopBid when the set is empty.
// Ties go to the earliest bid, which is the order the high-water mark
// would have produced.
func RecomputeTop(bids []domain.Bid) domain.TopBid {
	var top domain.TopBid
	for i := range bids {
		if bids[i].Amount > top.Amount {
			bidder := bids[i].UserID
			top = domain.TopBid{Amount: bids[i].Amount, BidderID: &bidder}
		}
	}
	return top
}

// Recompute derives both the total and the top bid from scratch.
func Recompute(bids []domain.Bid) (int64, domain.TopBid) {
	return Sum(bids), RecomputeTop(bids)
}

// TopAffected reports whether the current top-bid mark belongs to one of
// the given (about-to-be-vetoed) bids. When true, the stored mark would
// point at refunded money and must be recomputed from the remaining
// active set.
func TopAffected(vetoed []domain.Bid, top domain.TopBid) bool {
	if top.None() {
		return false
	}
	for i := range vetoed {
		if top.BidderID != nil && vetoed[i].UserID == *top.BidderID && vetoed[i].Amount == top.Amount {
			return true
		}
	}
	return false
}
