//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/crowdcue/platform/internal/auth"
	"github.com/google/uuid"
)

// RegisterGuest creates a guest user via the API and returns their token and ID.
func (env *TestEnv) RegisterGuest(displayName string) (token string, userID uuid.UUID) {
	env.t.Helper()

	resp := env.POST("/auth/guest", map[string]string{"display_name": displayName}, "")
	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterGuest: status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	DecodeJSON(env.t, resp, &body)

	id, err := uuid.Parse(body.User.ID)
	if err != nil {
		env.t.Fatalf("RegisterGuest: parse user id: %v", err)
	}
	return body.Token, id
}

// AdminToken mints an admin-realm token with the given role.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "admin@test", role)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// Deposit credits a user's wallet via the API and returns the new balance.
func (env *TestEnv) Deposit(token, amount string) int64 {
	env.t.Helper()

	resp := env.POST("/wallet/deposits", map[string]string{"amount": amount}, token)
	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("Deposit: status %d", resp.StatusCode)
	}
	var body struct {
		Balance int64 `json:"balance"`
	}
	DecodeJSON(env.t, resp, &body)
	return body.Balance
}

// CreateParty creates a party via the API and returns its ID.
func (env *TestEnv) CreateParty(token, name, minimumBid string) uuid.UUID {
	env.t.Helper()

	req := map[string]string{"name": name}
	if minimumBid != "" {
		req["minimum_bid"] = minimumBid
	}
	resp := env.POST("/parties", req, token)
	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("CreateParty: status %d", resp.StatusCode)
	}
	var body struct {
		ID string `json:"id"`
	}
	DecodeJSON(env.t, resp, &body)

	id, err := uuid.Parse(body.ID)
	if err != nil {
		env.t.Fatalf("CreateParty: parse id: %v", err)
	}
	return id
}

// SeedMedia inserts a media row directly and returns its ID.
func (env *TestEnv) SeedMedia(title, artist string) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO media (id, title, artist, duration_seconds, cover_url, created_at, updated_at)
		VALUES ($1, $2, $3, 180, '', now(), now())`, id, title, artist)
	if err != nil {
		env.t.Fatalf("SeedMedia: %v", err)
	}
	return id
}

// PlaceBid submits a bid via the API and returns the raw response.
func (env *TestEnv) PlaceBid(token string, partyID uuid.UUID, mediaID, amount string) *http.Response {
	env.t.Helper()
	return env.POST("/parties/"+partyID.String()+"/bids", map[string]string{
		"media_id": mediaID,
		"amount":   amount,
	}, token)
}

// MustPlaceBid submits a bid and fails the test unless it is accepted.
func (env *TestEnv) MustPlaceBid(token string, partyID uuid.UUID, mediaID, amount string) {
	env.t.Helper()
	resp := env.PlaceBid(token, partyID, mediaID, amount)
	if resp.StatusCode != http.StatusCreated {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		DecodeJSON(env.t, resp, &errResp)
		env.t.Fatalf("MustPlaceBid: status %d (%s: %s)", resp.StatusCode, errResp.Code, errResp.Message)
	}
	resp.Body.Close()
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// AuthGET performs a GET request with a bearer token.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest(http.MethodGet, env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	return resp
}

// POST performs a JSON POST request, with a bearer token when non-empty.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.PostWithHeaders(path, body, token, nil)
}

// PostWithHeaders performs a JSON POST with extra headers.
func (env *TestEnv) PostWithHeaders(path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		env.t.Fatalf("POST %s: marshal: %v", path, err)
	}

	req, err := http.NewRequest(http.MethodPost, env.Server.URL+path, bytes.NewReader(payload))
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}
