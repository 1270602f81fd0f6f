package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12.50", 1250},
		{"0.01", 1},
		{"0", 0},
		{"1000", 100000},
		{"99999999999.99", 9999999999999},
	}
	for _, c := range cases {
		d, err := decimal.NewFromString(c.in)
		require.NoError(t, err)
		got, err := MinorUnits(d)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "input %s", c.in)
	}
}

func TestMinorUnits_RejectsSubMinorPrecision(t *testing.T) {
	d, _ := decimal.NewFromString("1.005")
	_, err := MinorUnits(d)
	require.Error(t, err)

	// The rejection is a client input error, not an internal fault.
	appErr, ok := err.(*AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestMinorUnits_RejectsOverflow(t *testing.T) {
	d, _ := decimal.NewFromString("999999999999999999999.99")
	_, err := MinorUnits(d)
	require.Error(t, err)

	appErr, ok := err.(*AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestMajorUnits_RoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 99, 100, 1250, 9999999999999} {
		major := MajorUnits(minor)
		back, err := MinorUnits(major)
		require.NoError(t, err)
		assert.Equal(t, minor, back)
	}
	assert.Equal(t, "12.50", MajorUnits(1250).StringFixed(2))
}
