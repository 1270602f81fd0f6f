package infra

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64ToNumeric_RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1250, 999_999_999_999_999} {
		n := Int64ToNumeric(v)
		got, err := NumericToInt64(n)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestNumericToInt64_Null(t *testing.T) {
	_, err := NumericToInt64(pgtype.Numeric{Valid: false})
	assert.Error(t, err)
}

func TestNumericToInt64_PositiveExponent(t *testing.T) {
	// 12 * 10^2 = 1200, how Postgres may return round numbers.
	n := pgtype.Numeric{Int: big.NewInt(12), Exp: 2, Valid: true}
	got, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), got)
}

func TestNumericToInt64_Overflow(t *testing.T) {
	huge := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	n := pgtype.Numeric{Int: huge, Exp: 0, Valid: true}
	_, err := NumericToInt64(n)
	assert.Error(t, err)
}
