//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertBalance queries the users table and asserts the wallet balance.
func AssertBalance(t *testing.T, env *TestEnv, userID uuid.UUID, balance int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var bal int64
	err := env.Pool.QueryRow(ctx,
		"SELECT balance FROM users WHERE id = $1", userID).Scan(&bal)
	if err != nil {
		t.Fatalf("AssertBalance: query: %v", err)
	}
	if bal != balance {
		t.Errorf("balance: expected %d, got %d", balance, bal)
	}
}

// AssertEntryStatus asserts the queue entry's status for (party, media).
func AssertEntryStatus(t *testing.T, env *TestEnv, partyID, mediaID uuid.UUID, status string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got string
	err := env.Pool.QueryRow(ctx,
		"SELECT status FROM party_queue_entries WHERE party_id = $1 AND media_id = $2",
		partyID, mediaID).Scan(&got)
	if err != nil {
		t.Fatalf("AssertEntryStatus: query: %v", err)
	}
	if got != status {
		t.Errorf("entry status: expected %s, got %s", status, got)
	}
}

// AssertMediaAggregates asserts the media row's global aggregate and top bid.
// Pass a nil topBidder to assert the top-bid slot is empty.
func AssertMediaAggregates(t *testing.T, env *TestEnv, mediaID uuid.UUID, aggregate, topAmount int64, topBidder *uuid.UUID) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var gotAgg, gotTop int64
	var gotBidder *uuid.UUID
	if err := env.Pool.QueryRow(ctx,
		"SELECT global_aggregate::bigint, top_bid_amount::bigint, top_bidder_id FROM media WHERE id = $1",
		mediaID).Scan(&gotAgg, &gotTop, &gotBidder); err != nil {
		t.Fatalf("AssertMediaAggregates: query: %v", err)
	}
	if gotAgg != aggregate {
		t.Errorf("global aggregate: expected %d, got %d", aggregate, gotAgg)
	}
	if gotTop != topAmount {
		t.Errorf("top bid amount: expected %d, got %d", topAmount, gotTop)
	}
	switch {
	case topBidder == nil && gotBidder != nil:
		t.Errorf("top bidder: expected none, got %s", *gotBidder)
	case topBidder != nil && gotBidder == nil:
		t.Errorf("top bidder: expected %s, got none", *topBidder)
	case topBidder != nil && *gotBidder != *topBidder:
		t.Errorf("top bidder: expected %s, got %s", *topBidder, *gotBidder)
	}
}

// WalletConservation asserts that the sum of all user balances plus zero
// external flows equals total deposits minus nothing: money only moves
// between wallets and the ledger, it is never created or destroyed.
func WalletConservation(t *testing.T, env *TestEnv, expectedTotal int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var balances, activeBids int64
	if err := env.Pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(balance), 0) FROM users").Scan(&balances); err != nil {
		t.Fatalf("WalletConservation: sum balances: %v", err)
	}
	if err := env.Pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM bids WHERE status = 'active'").Scan(&activeBids); err != nil {
		t.Fatalf("WalletConservation: sum active bids: %v", err)
	}

	if balances+activeBids != expectedTotal {
		t.Errorf("conservation violated: balances(%d) + active bids(%d) = %d, expected %d",
			balances, activeBids, balances+activeBids, expectedTotal)
	}
}
