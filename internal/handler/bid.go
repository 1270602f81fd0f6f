package handler

import (
	"net/http"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidHandler handles bid placement.
type BidHandler struct {
	bids *service.BidService
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(bids *service.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// placeBidRequest is the shape of POST /parties/{partyID}/bids. Amount is
// a major unit decimal string; scope defaults to party.
type placeBidRequest struct {
	MediaID string `json:"media_id"`
	Amount  string `json:"amount"`
	Scope   string `json:"scope,omitempty"`
}

// placeBidResponse is the command result: the bid plus the post-command
// wallet balance and entry standing the client should render.
type placeBidResponse struct {
	Bid        *domain.Bid             `json:"bid"`
	Balance    int64                   `json:"balance"`
	Entry      *domain.PartyQueueEntry `json:"entry"`
	Media      *domain.Media           `json:"media"`
	OutbidUser *uuid.UUID              `json:"outbid_user,omitempty"`
}

// PlaceBid handles POST /parties/{partyID}/bids.
func (h *BidHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	partyID, err := uuid.Parse(chi.URLParam(r, "partyID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid party id"))
		return
	}

	var req placeBidRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	// Clients may bid on a raw media UUID or an external catalog ref
	// ("spotify:track:..."); refs map deterministically to media IDs.
	mediaID, err := uuid.Parse(req.MediaID)
	if err != nil {
		if !domain.IsCatalogRef(req.MediaID) {
			RespondError(w, domain.ErrValidation("invalid media id"))
			return
		}
		mediaID = domain.MediaIDFromCatalogRef(req.MediaID)
	}

	major, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondError(w, domain.ErrValidation("amount must be a decimal string"))
		return
	}
	minor, err := domain.MinorUnits(major)
	if err != nil {
		RespondError(w, err)
		return
	}

	scope := domain.ScopeParty
	if req.Scope != "" {
		scope = domain.BidScope(req.Scope)
	}

	result, err := h.bids.PlaceBid(r.Context(), domain.PlaceBidParams{
		UserID:  userID,
		PartyID: partyID,
		MediaID: mediaID,
		Amount:  minor,
		Scope:   scope,
	}, r.Header.Get("Idempotency-Key"))
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, placeBidResponse{
		Bid:        result.Bid,
		Balance:    result.Wallet.Balance,
		Entry:      result.Entry,
		Media:      result.Media,
		OutbidUser: result.OutbidUser,
	})
}
