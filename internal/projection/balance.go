package projection

import (
	"context"
	"fmt"
	"time"
)

// BalanceProjection represents a cached wallet balance.
type BalanceProjection struct {
	UserID    string `json:"userId"`
	Balance   int64  `json:"balance"`
	Currency  string `json:"currency"`
	UpdatedAt string `json:"updatedAt"`
}

const balanceTTL = 5 * time.Minute

// UpdateBalance caches a user's balance projection.
func UpdateBalance(ctx context.Context, store Store, p BalanceProjection) error {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	key := fmt.Sprintf("projection:balance:%s", p.UserID)
	return SetJSON(ctx, store, key, p, balanceTTL)
}

// GetBalance retrieves a cached balance projection.
func GetBalance(ctx context.Context, store Store, userID string) (*BalanceProjection, error) {
	key := fmt.Sprintf("projection:balance:%s", userID)
	var p BalanceProjection
	if err := GetJSON(ctx, store, key, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InvalidateBalance removes a user's cached balance.
func InvalidateBalance(ctx context.Context, store Store, userID string) error {
	key := fmt.Sprintf("projection:balance:%s", userID)
	return store.Delete(ctx, key)
}
