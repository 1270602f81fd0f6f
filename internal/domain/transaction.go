package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates all wallet transaction types.
type TransactionType string

const (
	TxDeposit      TransactionType = "wallet_deposit"
	TxBidDebit     TransactionType = "bid_debit"
	TxRefundCredit TransactionType = "refund_credit"
)

// WalletTransaction represents a wallet_transactions row (append-only
// ledger entry with a post-update balance snapshot).
type WalletTransaction struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	BidID        *uuid.UUID      `json:"bid_id,omitempty"`
	PartyID      *uuid.UUID      `json:"party_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PostWalletEntryParams is the input to the atomic PostWalletEntry
// operation: one balance delta plus one ledger row, inside the caller's
// transaction.
type PostWalletEntryParams struct {
	UserID   uuid.UUID
	Type     TransactionType
	Amount   int64
	Delta    int64 // signed change applied to the balance column
	BidID    *uuid.UUID
	PartyID  *uuid.UUID
	Metadata json.RawMessage
}

// DepositParams holds the input for ExecuteDeposit (wallet top-up landing
// point; payment intake itself lives outside this core).
type DepositParams struct {
	UserID   uuid.UUID
	Amount   int64
	Metadata json.RawMessage
}

// DepositResult is returned from ExecuteDeposit.
type DepositResult struct {
	Transaction *WalletTransaction
	Wallet      *User
}
