//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/crowdcue/platform/test/integration/testutil"
	"github.com/google/uuid"
)

// placeBidParallel fires one bid request; safe to call from a goroutine
// (no testing.T methods are touched until the caller collects results).
func placeBidParallel(serverURL, token string, partyID uuid.UUID, mediaID, amount string) (int, error) {
	payload, err := json.Marshal(map[string]string{"media_id": mediaID, "amount": amount})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(http.MethodPost, serverURL+"/parties/"+partyID.String()+"/bids", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func TestPlaceBid_ConcurrentBidsLoseNoIncrement(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, aliceID := env.RegisterGuest("alice")
	bobToken, bobID := env.RegisterGuest("bob")
	env.Deposit(aliceToken, "50.00")
	env.Deposit(bobToken, "50.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	// Two bidders race five bids each at the same media. Every accepted
	// bid must land in the aggregate exactly once.
	const bidsPerUser = 5
	type attempt struct {
		token  string
		amount string
	}
	attempts := make([]attempt, 0, 2*bidsPerUser)
	for i := 0; i < bidsPerUser; i++ {
		attempts = append(attempts, attempt{aliceToken, "1.00"})
		attempts = append(attempts, attempt{bobToken, "2.00"})
	}

	statuses := make(chan int, len(attempts))
	errs := make(chan error, len(attempts))
	var wg sync.WaitGroup
	for _, a := range attempts {
		wg.Add(1)
		go func(a attempt) {
			defer wg.Done()
			status, err := placeBidParallel(env.Server.URL, a.token, partyID, mediaID.String(), a.amount)
			if err != nil {
				errs <- err
				return
			}
			statuses <- status
		}(a)
	}
	wg.Wait()
	close(statuses)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent bid request: %v", err)
	}
	for status := range statuses {
		if status != http.StatusCreated {
			t.Fatalf("concurrent bid rejected with status %d", status)
		}
	}

	// 5×100 + 5×200, no lost update in either scope; the single highest
	// bid is one of bob's 200s.
	testutil.AssertMediaAggregates(t, env, mediaID, 1500, 200, &bobID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var entry int64
	if err := env.Pool.QueryRow(ctx,
		"SELECT aggregate::bigint FROM party_queue_entries WHERE party_id = $1 AND media_id = $2",
		partyID, mediaID).Scan(&entry); err != nil {
		t.Fatalf("query entry aggregate: %v", err)
	}
	if entry != 1500 {
		t.Errorf("expected entry aggregate 1500, got %d", entry)
	}

	testutil.AssertBalance(t, env, aliceID, 4500)
	testutil.AssertBalance(t, env, bobID, 4000)
	testutil.WalletConservation(t, env, 10000)
}
