//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/crowdcue/platform/test/integration/testutil"
)

func TestVeto_RefundsGroupedPerBidder(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, aliceID := env.RegisterGuest("alice")
	bobToken, bobID := env.RegisterGuest("bob")
	env.Deposit(aliceToken, "50.00")
	env.Deposit(bobToken, "50.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	// Alice bids twice, Bob once; a veto must refund each bidder's total
	// as a single credit.
	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "5.00")
	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "3.00")
	env.MustPlaceBid(bobToken, partyID, mediaID.String(), "4.00")

	resp := env.POST("/parties/"+partyID.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, hostToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Entry struct {
			Status    string `json:"status"`
			Aggregate int64  `json:"aggregate"`
		} `json:"entry"`
		Refunds []struct {
			UserID string `json:"user_id"`
			Amount int64  `json:"amount"`
			Bids   int    `json:"bids"`
		} `json:"refunds"`
		Refunded int64 `json:"refunded"`
	}
	testutil.DecodeJSON(t, resp, &result)

	if result.Entry.Status != "vetoed" {
		t.Errorf("expected vetoed entry, got %s", result.Entry.Status)
	}
	if result.Refunded != 1200 {
		t.Errorf("expected 1200 refunded, got %d", result.Refunded)
	}
	if len(result.Refunds) != 2 {
		t.Fatalf("expected 2 refund groups, got %d", len(result.Refunds))
	}
	byUser := map[string]int64{}
	bids := map[string]int{}
	for _, r := range result.Refunds {
		byUser[r.UserID] = r.Amount
		bids[r.UserID] = r.Bids
	}
	if byUser[aliceID.String()] != 800 || bids[aliceID.String()] != 2 {
		t.Errorf("alice refund: got %d over %d bids", byUser[aliceID.String()], bids[aliceID.String()])
	}
	if byUser[bobID.String()] != 400 || bids[bobID.String()] != 1 {
		t.Errorf("bob refund: got %d over %d bids", byUser[bobID.String()], bids[bobID.String()])
	}

	// Everyone is whole again, including through the cached balance path.
	balResp := env.AuthGET("/wallet/balance", aliceToken)
	var bal struct {
		Balance int64 `json:"balance"`
	}
	testutil.DecodeJSON(t, balResp, &bal)
	if bal.Balance != 5000 {
		t.Errorf("expected API balance 5000 after refund, got %d", bal.Balance)
	}

	testutil.AssertBalance(t, env, aliceID, 5000)
	testutil.AssertBalance(t, env, bobID, 5000)
	testutil.WalletConservation(t, env, 10000)
}

func TestVeto_SecondVetoConflicts(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, aliceID := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "20.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")
	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "5.00")

	resp := env.POST("/parties/"+partyID.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, hostToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.POST("/parties/"+partyID.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, hostToken)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "INVALID_TRANSITION")

	// No double refund.
	testutil.AssertBalance(t, env, aliceID, 2000)
}

func TestVeto_NonHostForbidden(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "20.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")
	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "5.00")

	resp := env.POST("/parties/"+partyID.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, aliceToken)
	testutil.AssertStatus(t, resp, http.StatusForbidden)
}

func TestVeto_FreshBidRevivesEntry(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "50.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "5.00")
	resp := env.POST("/parties/"+partyID.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, hostToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// A vetoed entry is terminal for its bids, but a fresh bid starts
	// the media over from zero.
	resp = env.PlaceBid(aliceToken, partyID, mediaID.String(), "2.00")
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var body struct {
		Entry struct {
			Status       string `json:"status"`
			Aggregate    int64  `json:"aggregate"`
			TopBidAmount int64  `json:"top_bid_amount"`
		} `json:"entry"`
	}
	testutil.DecodeJSON(t, resp, &body)

	if body.Entry.Status != "queued" {
		t.Errorf("expected revived entry queued, got %s", body.Entry.Status)
	}
	if body.Entry.Aggregate != 200 || body.Entry.TopBidAmount != 200 {
		t.Errorf("revived entry should not carry vetoed amounts: %+v", body.Entry)
	}

	testutil.WalletConservation(t, env, 5000)
}

func TestVeto_RecomputesGlobalTopBid(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostAToken, _ := env.RegisterGuest("hostA")
	hostBToken, _ := env.RegisterGuest("hostB")
	aliceToken, aliceID := env.RegisterGuest("alice")
	bobToken, bobID := env.RegisterGuest("bob")
	env.Deposit(aliceToken, "50.00")
	env.Deposit(bobToken, "50.00")

	partyA := env.CreateParty(hostAToken, "party-a", "")
	partyB := env.CreateParty(hostBToken, "party-b", "")
	mediaID := env.SeedMedia("Track", "Artist")

	// The media's global top bid lives in party A; party B only
	// contributes a smaller one.
	env.MustPlaceBid(aliceToken, partyA, mediaID.String(), "9.00")
	env.MustPlaceBid(bobToken, partyB, mediaID.String(), "4.00")
	testutil.AssertMediaAggregates(t, env, mediaID, 1300, 900, &aliceID)

	resp := env.POST("/parties/"+partyA.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, hostAToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Refunding the 900 bid vacates the top slot; the surviving bid in
	// party B must take it over.
	testutil.AssertMediaAggregates(t, env, mediaID, 400, 400, &bobID)
	testutil.AssertEntryStatus(t, env, partyB, mediaID, "queued")
	testutil.WalletConservation(t, env, 10000)
}

func TestAdminVeto_ModeratorAllowed(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, aliceID := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "20.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")
	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "5.00")

	resp := env.POST("/admin/parties/"+partyID.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, env.AdminToken("moderator"))
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	testutil.AssertEntryStatus(t, env, partyID, mediaID, "vetoed")
	testutil.AssertBalance(t, env, aliceID, 2000)
}

func TestAdminVeto_ViewerForbidden(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "20.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")
	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "5.00")

	resp := env.POST("/admin/parties/"+partyID.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, env.AdminToken("viewer"))
	testutil.AssertStatus(t, resp, http.StatusForbidden)
}

func TestAdminVeto_UserTokenRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")

	resp := env.POST("/admin/parties/"+partyID.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, hostToken)
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
}
