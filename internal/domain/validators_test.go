package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCurrency(t *testing.T) {
	assert.NoError(t, ValidateCurrency("EUR"))
	assert.NoError(t, ValidateCurrency("USD"))
	assert.Error(t, ValidateCurrency("eur"))
	assert.Error(t, ValidateCurrency("EURO"))
	assert.Error(t, ValidateCurrency(""))
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(1))
	assert.Error(t, ValidatePositiveAmount(0))
	assert.Error(t, ValidatePositiveAmount(-100))
}

func TestValidateScope(t *testing.T) {
	assert.NoError(t, ValidateScope(ScopeParty))
	assert.NoError(t, ValidateScope(ScopeGlobal))
	assert.Error(t, ValidateScope(BidScope("universe")))
	assert.Error(t, ValidateScope(BidScope("")))
}
