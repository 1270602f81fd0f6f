//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/crowdcue/platform/test/integration/testutil"
)

func TestChart_ColdCacheUnavailable(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/chart")
	testutil.AssertStatus(t, resp, http.StatusServiceUnavailable)
	testutil.AssertErrorCode(t, resp, "CHART_UNAVAILABLE")
}

func TestChart_AdminRefreshWarmsCache(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "10.00")

	partyID := env.CreateParty(hostToken, "party", "")
	mediaID := env.SeedMedia("Track", "Artist")
	env.MustPlaceBid(aliceToken, partyID, mediaID.String(), "2.00")

	resp := env.POST("/admin/chart/refresh", map[string]string{}, env.AdminToken("moderator"))
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.GET("/chart")
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}

func TestChart_RanksFundedMediaAcrossParties(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	bobToken, _ := env.RegisterGuest("bob")
	env.Deposit(aliceToken, "100.00")
	env.Deposit(bobToken, "100.00")

	partyA := env.CreateParty(hostToken, "party a", "")
	partyB := env.CreateParty(hostToken, "party b", "")

	anthem := env.SeedMedia("Anthem", "Artist")
	sleeper := env.SeedMedia("Sleeper", "Artist")
	unfunded := env.SeedMedia("Unfunded", "Artist")

	// The anthem is funded across two parties; the chart sums both.
	env.MustPlaceBid(aliceToken, partyA, anthem.String(), "4.00")
	env.MustPlaceBid(bobToken, partyB, anthem.String(), "3.00")
	env.MustPlaceBid(bobToken, partyB, sleeper.String(), "5.00")

	env.RefreshChart()

	resp := env.GET("/chart")
	testutil.AssertStatus(t, resp, http.StatusOK)

	var chart struct {
		Entries []struct {
			MediaID      string `json:"media_id"`
			Title        string `json:"title"`
			Aggregate    int64  `json:"aggregate"`
			TopBidAmount int64  `json:"top_bid_amount"`
			Status       string `json:"status"`
		} `json:"entries"`
		RefreshedAt string `json:"refreshed_at"`
	}
	testutil.DecodeJSON(t, resp, &chart)

	if len(chart.Entries) != 2 {
		t.Fatalf("expected 2 funded entries, got %d", len(chart.Entries))
	}
	if chart.Entries[0].MediaID != anthem.String() || chart.Entries[0].Aggregate != 700 {
		t.Errorf("expected anthem first with 700, got %+v", chart.Entries[0])
	}
	if chart.Entries[1].MediaID != sleeper.String() || chart.Entries[1].Aggregate != 500 {
		t.Errorf("expected sleeper second with 500, got %+v", chart.Entries[1])
	}
	if chart.Entries[0].TopBidAmount != 400 {
		t.Errorf("expected anthem top bid 400, got %d", chart.Entries[0].TopBidAmount)
	}
	for _, e := range chart.Entries {
		if e.MediaID == unfunded.String() {
			t.Error("unfunded media must not chart")
		}
	}
	if chart.RefreshedAt == "" {
		t.Error("expected a refresh timestamp")
	}
}

func TestChart_VetoLowersGlobalStanding(t *testing.T) {
	env := testutil.NewTestEnv(t)

	hostToken, _ := env.RegisterGuest("host")
	aliceToken, _ := env.RegisterGuest("alice")
	env.Deposit(aliceToken, "100.00")

	partyA := env.CreateParty(hostToken, "party a", "")
	partyB := env.CreateParty(hostToken, "party b", "")
	mediaID := env.SeedMedia("Track", "Artist")

	env.MustPlaceBid(aliceToken, partyA, mediaID.String(), "4.00")
	env.MustPlaceBid(aliceToken, partyB, mediaID.String(), "6.00")

	// Veto in party A refunds its bids; the global aggregate keeps only
	// party B's contribution.
	resp := env.POST("/parties/"+partyA.String()+"/veto",
		map[string]string{"media_id": mediaID.String()}, hostToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	env.RefreshChart()

	chartResp := env.GET("/chart")
	var chart struct {
		Entries []struct {
			MediaID   string `json:"media_id"`
			Aggregate int64  `json:"aggregate"`
		} `json:"entries"`
	}
	testutil.DecodeJSON(t, chartResp, &chart)

	if len(chart.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(chart.Entries))
	}
	if chart.Entries[0].Aggregate != 600 {
		t.Errorf("expected aggregate 600 after veto, got %d", chart.Entries[0].Aggregate)
	}
}
