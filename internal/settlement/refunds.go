// Package settlement implements the veto/refund compensating transaction:
// every active bidder on a vetoed entry is credited back in one database
// transaction, so a partial refund cannot be observed or persisted.
package settlement

import (
	"sort"

	"github.com/crowdcue/platform/internal/domain"
)

// GroupRefunds collapses a bid set into one refund per bidder (the sum of
// that bidder's amounts). Groups come back ordered by user ID so wallet
// row locks are always taken in the same order.
func GroupRefunds(bids []domain.Bid) []domain.RefundGroup {
	byUser := make(map[string]*domain.RefundGroup)
	for i := range bids {
		key := bids[i].UserID.String()
		g, ok := byUser[key]
		if !ok {
			g = &domain.RefundGroup{UserID: bids[i].UserID}
			byUser[key] = g
		}
		g.Amount += bids[i].Amount
		g.Bids++
	}

	groups := make([]domain.RefundGroup, 0, len(byUser))
	for _, g := range byUser {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].UserID.String() < groups[j].UserID.String()
	})
	return groups
}
