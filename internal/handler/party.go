package handler

import (
	"context"
	"net/http"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyHandler handles party lifecycle and queue endpoints.
type PartyHandler struct {
	parties *service.PartyService
}

// NewPartyHandler creates a new PartyHandler.
func NewPartyHandler(parties *service.PartyService) *PartyHandler {
	return &PartyHandler{parties: parties}
}

// createPartyRequest is the shape of POST /parties. MinimumBid is a major
// unit decimal string.
type createPartyRequest struct {
	Name       string `json:"name"`
	MinimumBid string `json:"minimum_bid,omitempty"`
}

// CreateParty handles POST /parties. The caller becomes the host.
func (h *PartyHandler) CreateParty(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req createPartyRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	var minimum int64
	if req.MinimumBid != "" {
		major, err := decimal.NewFromString(req.MinimumBid)
		if err != nil {
			RespondError(w, domain.ErrValidation("minimum_bid must be a decimal string"))
			return
		}
		if minimum, err = domain.MinorUnits(major); err != nil {
			RespondError(w, err)
			return
		}
	}

	party, err := h.parties.CreateParty(r.Context(), userID, req.Name, minimum)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, party)
}

// GetParty handles GET /parties/{partyID}.
func (h *PartyHandler) GetParty(w http.ResponseWriter, r *http.Request) {
	partyID, err := partyIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	party, err := h.parties.GetParty(r.Context(), partyID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, party)
}

// GetQueue handles GET /parties/{partyID}/queue.
func (h *PartyHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	partyID, err := partyIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	entries, err := h.parties.Queue(r.Context(), partyID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"party_id": partyID.String(),
		"entries":  entries,
	})
}

// transitionRequest names the media a playback transition applies to.
type transitionRequest struct {
	MediaID string `json:"media_id"`
}

// Play handles POST /parties/{partyID}/play.
func (h *PartyHandler) Play(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.parties.Play)
}

// Complete handles POST /parties/{partyID}/complete.
func (h *PartyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.parties.Complete)
}

// Skip handles POST /parties/{partyID}/skip.
func (h *PartyHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.parties.Skip)
}

func (h *PartyHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, partyID, mediaID, actorID uuid.UUID) (*domain.PartyQueueEntry, error),
) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	partyID, err := partyIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req transitionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	mediaID, err := uuid.Parse(req.MediaID)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid media id"))
		return
	}

	entry, err := op(r.Context(), partyID, mediaID, userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entry)
}

// Veto handles POST /parties/{partyID}/veto.
func (h *PartyHandler) Veto(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	partyID, err := partyIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req transitionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	mediaID, err := uuid.Parse(req.MediaID)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid media id"))
		return
	}

	result, err := h.parties.Veto(r.Context(), domain.VetoParams{
		PartyID: partyID,
		MediaID: mediaID,
		ActorID: userID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

func partyIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "partyID"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid party id")
	}
	return id, nil
}
