package handler

import (
	"net/http"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/service"
)

// AuthHandler handles guest session creation and profile reads.
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type guestRequest struct {
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency,omitempty"`
}

// RegisterGuest handles POST /auth/guest.
func (h *AuthHandler) RegisterGuest(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	session, err := h.users.RegisterGuest(r.Context(), req.DisplayName, req.Currency)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, session)
}

// GetMe handles GET /users/me.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}
