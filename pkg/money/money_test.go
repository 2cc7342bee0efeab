package money_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zokasta/bank/pkg/money"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		units   int64
		wantErr error
	}{
		{name: "whole amount", in: "100", units: 10000},
		{name: "two decimals", in: "40.00", units: 4000},
		{name: "one decimal", in: "0.5", units: 50},
		{name: "smallest unit", in: "0.01", units: 1},
		{name: "negative", in: "-12.34", units: -1234},
		{name: "too many decimals", in: "1.005", wantErr: money.ErrInvalidAmount},
		{name: "not a number", in: "forty", wantErr: money.ErrInvalidAmount},
		{name: "empty", in: "", wantErr: money.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.Parse(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.units, got.Units())
		})
	}
}

func TestFromFloat(t *testing.T) {
	m, err := money.FromFloat(40.00)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), m.Units())

	// JSON numbers like 0.1+0.2 must round cleanly to two places.
	m, err = money.FromFloat(0.1 + 0.2)
	require.NoError(t, err)
	assert.Equal(t, int64(30), m.Units())

	_, err = money.FromFloat(math.NaN())
	require.ErrorIs(t, err, money.ErrInvalidAmount)
	_, err = money.FromFloat(math.Inf(1))
	require.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestArithmetic(t *testing.T) {
	a := money.FromUnits(6000)
	b := money.FromUnits(4000)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), sum.Units())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), diff.Units())

	_, err = money.FromUnits(math.MaxInt64).Add(money.FromUnits(1))
	require.ErrorIs(t, err, money.ErrOverflow)
}

func TestComparisons(t *testing.T) {
	a := money.FromUnits(100)
	b := money.FromUnits(200)

	assert.True(t, b.GreaterThan(a))
	assert.True(t, a.LessThan(b))
	assert.True(t, a.Equals(money.FromUnits(100)))
	assert.True(t, a.IsPositive())
	assert.True(t, money.Zero.IsZero())
	assert.True(t, money.FromUnits(-1).IsNegative())
}

func TestString(t *testing.T) {
	assert.Equal(t, "40.00", money.FromUnits(4000).String())
	assert.Equal(t, "0.01", money.FromUnits(1).String())
	assert.Equal(t, "-3.50", money.FromUnits(-350).String())
	assert.Equal(t, "0.00", money.Zero.String())
}
