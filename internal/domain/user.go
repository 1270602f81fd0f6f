package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a users row. The balance is the user's spendable wallet
// in integer minor currency units (numeric(15,0) in Postgres).
type User struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Balance     int64     `json:"balance"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
