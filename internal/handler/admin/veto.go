package admin

import (
	"net/http"

	"github.com/crowdcue/platform/internal/auth"
	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/handler"
	"github.com/crowdcue/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// VetoHandler exposes the platform-admin veto, which bypasses the host
// check. Routes using it sit behind the admin realm and a write role.
type VetoHandler struct {
	parties *service.PartyService
}

// NewVetoHandler creates a new VetoHandler.
func NewVetoHandler(parties *service.PartyService) *VetoHandler {
	return &VetoHandler{parties: parties}
}

type vetoRequest struct {
	MediaID string `json:"media_id"`
}

// Veto handles POST /admin/parties/{partyID}/veto.
func (h *VetoHandler) Veto(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		handler.RespondError(w, domain.ErrUnauthorized("no auth context"))
		return
	}
	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		handler.RespondError(w, domain.ErrUnauthorized("invalid subject claim"))
		return
	}

	partyID, err := uuid.Parse(chi.URLParam(r, "partyID"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid party id"))
		return
	}

	var req vetoRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	mediaID, err := uuid.Parse(req.MediaID)
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid media id"))
		return
	}

	result, err := h.parties.Veto(r.Context(), domain.VetoParams{
		PartyID: partyID,
		MediaID: mediaID,
		ActorID: actorID,
		AsAdmin: true,
	})
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result)
}
