package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnits converts a decimal major-unit amount (e.g. "12.50") into
// integer minor units. External APIs may accept decimal input; everything
// inside the core is int64 minor units, so the conversion happens at the
// boundary and rejects sub-minor-unit precision. Rejections are client
// input errors and carry the validation code.
func MinorUnits(major decimal.Decimal) (int64, error) {
	minor := major.Shift(2)
	if !minor.IsInteger() {
		return 0, ErrValidation(fmt.Sprintf("amount %s has sub-minor-unit precision", major))
	}
	if !minor.BigInt().IsInt64() {
		return 0, ErrValidation(fmt.Sprintf("amount %s overflows int64 minor units", major))
	}
	return minor.IntPart(), nil
}

// MajorUnits renders integer minor units as a decimal major-unit amount
// for display payloads.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-2)
}
