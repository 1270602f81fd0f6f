//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/crowdcue/platform/test/integration/testutil"
	"github.com/google/uuid"
)

func TestPlaceBid_DebitsWalletAndBuildsEntry(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, aliceID := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "50.00")

	partyID := env.CreateParty(hostToken, "friday night", "1.00")
	mediaID := env.SeedMedia("Track One", "Artist A")

	resp := env.PlaceBid(aliceToken, partyID, mediaID.String(), "10.00")
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var body struct {
		Balance int64 `json:"balance"`
		Entry   struct {
			Aggregate    int64  `json:"aggregate"`
			TopBidAmount int64  `json:"top_bid_amount"`
			Status       string `json:"status"`
		} `json:"entry"`
		Media struct {
			GlobalAggregate int64 `json:"global_aggregate"`
		} `json:"media"`
	}
	testutil.DecodeJSON(t, resp, &body)

	if body.Balance != 4000 {
		t.Errorf("expected balance 4000, got %d", body.Balance)
	}
	if body.Entry.Aggregate != 1000 || body.Entry.TopBidAmount != 1000 {
		t.Errorf("unexpected entry aggregates: %+v", body.Entry)
	}
	if body.Entry.Status != "queued" {
		t.Errorf("expected queued entry, got %s", body.Entry.Status)
	}
	if body.Media.GlobalAggregate != 1000 {
		t.Errorf("expected global aggregate 1000, got %d", body.Media.GlobalAggregate)
	}

	testutil.AssertBalance(t, env, aliceID, 4000)
	testutil.WalletConservation(t, env, 5000)
}

func TestPlaceBid_AggregatesAcrossBidders(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, aliceID := env.RegisterGuest("alice")
	bobToken, _ := env.RegisterGuest("bob")
	env.Deposit(aliceToken, "50.00")
	env.Deposit(bobToken, "50.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "5.00")
	env.MustPlaceBid(bobToken, partyID, mediaID.String(), "3.00")

	resp := env.PlaceBid(aliceToken, partyID, mediaID.String(), "2.00")
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var body struct {
		Entry struct {
			Aggregate    int64 `json:"aggregate"`
			TopBidAmount int64 `json:"top_bid_amount"`
		} `json:"entry"`
		OutbidUser *string `json:"outbid_user"`
	}
	testutil.DecodeJSON(t, resp, &body)

	if body.Entry.Aggregate != 1000 {
		t.Errorf("expected aggregate 1000, got %d", body.Entry.Aggregate)
	}
	// Alice's first 500 remains the single largest bid.
	if body.Entry.TopBidAmount != 500 {
		t.Errorf("expected top bid 500, got %d", body.Entry.TopBidAmount)
	}
	if body.OutbidUser != nil {
		t.Errorf("no top change, no outbid signal; got %s", *body.OutbidUser)
	}

	// Bob now outbids the standing top; the displaced bidder is reported.
	resp = env.PlaceBid(bobToken, partyID, mediaID.String(), "6.00")
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var second struct {
		Entry struct {
			Aggregate    int64 `json:"aggregate"`
			TopBidAmount int64 `json:"top_bid_amount"`
		} `json:"entry"`
		OutbidUser *string `json:"outbid_user"`
	}
	testutil.DecodeJSON(t, resp, &second)

	if second.Entry.Aggregate != 1600 || second.Entry.TopBidAmount != 600 {
		t.Errorf("unexpected standing after outbid: %+v", second.Entry)
	}
	if second.OutbidUser == nil || *second.OutbidUser != aliceID.String() {
		t.Errorf("expected alice reported as outbid, got %v", second.OutbidUser)
	}

	testutil.WalletConservation(t, env, 10000)
}

func TestPlaceBid_InsufficientBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, aliceID := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "5.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	resp := env.PlaceBid(aliceToken, partyID, mediaID.String(), "10.00")
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_BALANCE")

	// Nothing moved: no debit, no entry.
	testutil.AssertBalance(t, env, aliceID, 500)
	queueResp := env.AuthGET("/parties/"+partyID.String()+"/queue", aliceToken)
	var queue struct {
		Entries []struct{} `json:"entries"`
	}
	testutil.DecodeJSON(t, queueResp, &queue)
	if len(queue.Entries) != 0 {
		t.Errorf("expected empty queue, got %d entries", len(queue.Entries))
	}
}

func TestPlaceBid_BelowPartyMinimum(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "50.00")

	partyID := env.CreateParty(hostToken, "party", "5.00")
	mediaID := env.SeedMedia("Track", "Artist")

	resp := env.PlaceBid(aliceToken, partyID, mediaID.String(), "1.00")
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")

	// Nothing moved.
	testutil.WalletConservation(t, env, 5000)
}

func TestPlaceBid_AbovePlatformCap(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	// The platform cap rejects an otherwise well-formed amount before any
	// balance check.
	resp := env.PlaceBid(aliceToken, partyID, mediaID.String(), "20000.00")
	testutil.AssertStatus(t, resp, 422)
	testutil.AssertErrorCode(t, resp, "BID_REJECTED")
}

func TestPlaceBid_RejectsSubMinorPrecision(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "50.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	resp := env.PlaceBid(aliceToken, partyID, mediaID.String(), "1.005")
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestPlaceBid_CatalogRefCreatesMedia(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "50.00")

	partyID := env.CreateParty(hostToken, "party", "")

	resp := env.PlaceBid(aliceToken, partyID, "spotify:track:abc123", "2.00")
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var body struct {
		Media struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"media"`
	}
	testutil.DecodeJSON(t, resp, &body)

	if _, err := uuid.Parse(body.Media.ID); err != nil {
		t.Fatalf("expected media UUID, got %q", body.Media.ID)
	}
	// Metadata provider is not configured in tests; defaults apply.
	if body.Media.Title != "Unknown" {
		t.Errorf("expected default title, got %q", body.Media.Title)
	}

	// Same ref from another user lands on the same media row.
	bobToken, _ := env.RegisterGuest("bob")
	env.Deposit(bobToken, "10.00")
	resp2 := env.PlaceBid(bobToken, partyID, "spotify:track:abc123", "1.00")
	testutil.AssertStatus(t, resp2, http.StatusCreated)

	var body2 struct {
		Media struct {
			ID string `json:"id"`
		} `json:"media"`
		Entry struct {
			Aggregate int64 `json:"aggregate"`
		} `json:"entry"`
	}
	testutil.DecodeJSON(t, resp2, &body2)
	if body2.Media.ID != body.Media.ID {
		t.Errorf("catalog ref mapped to different media rows: %s vs %s", body.Media.ID, body2.Media.ID)
	}
	if body2.Entry.Aggregate != 300 {
		t.Errorf("expected aggregate 300, got %d", body2.Entry.Aggregate)
	}
}

func TestPlaceBid_IdempotencyKeyDeduplicates(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, aliceID := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "50.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	body := map[string]string{"media_id": mediaID.String(), "amount": "10.00"}
	headers := map[string]string{"Idempotency-Key": "bid-once"}

	resp := env.PostWithHeaders("/parties/"+partyID.String()+"/bids", body, aliceToken, headers)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = env.PostWithHeaders("/parties/"+partyID.String()+"/bids", body, aliceToken, headers)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	resp.Body.Close()

	testutil.AssertBalance(t, env, aliceID, 4000)
}
