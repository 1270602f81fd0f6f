package handler

import (
	"net/http"
	"strconv"

	"github.com/crowdcue/platform/internal/auth"
	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet balance, history, and deposit endpoints.
type WalletHandler struct {
	wallet *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallet *service.WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// balanceResponse is the shape of GET /wallet/balance. Balance is minor
// units; balance_display is the same amount in major units for clients
// that render currency directly.
type balanceResponse struct {
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
	Currency       string `json:"currency"`
}

// GetBalance handles GET /wallet/balance.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	user, err := h.wallet.Balance(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, balanceResponse{
		Balance:        user.Balance,
		BalanceDisplay: domain.MajorUnits(user.Balance).StringFixed(2),
		Currency:       user.Currency,
	})
}

// txListResponse wraps a list of transactions with the next cursor.
type txListResponse struct {
	Transactions []domain.WalletTransaction `json:"transactions"`
	NextCursor   *string                    `json:"next_cursor,omitempty"`
}

// ListTransactions handles GET /wallet/transactions?cursor=&limit=.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	entries, err := h.wallet.Transactions(r.Context(), userID, cursor, limit)
	if err != nil {
		RespondError(w, err)
		return
	}

	resp := txListResponse{Transactions: entries}
	if len(entries) == limit {
		last := entries[len(entries)-1].ID.String()
		resp.NextCursor = &last
	}
	RespondJSON(w, http.StatusOK, resp)
}

// depositRequest is the shape of POST /wallet/deposits. Amount is a major
// unit decimal string ("25.00"); the ledger stores minor units.
type depositRequest struct {
	Amount string `json:"amount"`
}

// Deposit handles POST /wallet/deposits.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req depositRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
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

	result, err := h.wallet.Deposit(r.Context(), userID, minor, nil)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": result.Transaction,
		"balance":     result.Wallet.Balance,
	})
}

// userIDFromContext extracts the authenticated user's UUID from the JWT subject.
func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return uuid.Nil, domain.ErrUnauthorized("no auth context")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject claim")
	}
	return id, nil
}
