package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound_Modes(t *testing.T) {
	tests := []struct {
		name  string
		value string
		mode  Mode
		want  string
	}{
		{"half even down", "1.125", HalfEven, "1.12"},
		{"half even up", "1.135", HalfEven, "1.14"},
		{"half up", "1.125", HalfUp, "1.13"},
		{"up positive", "1.001", Up, "1.01"},
		{"up negative", "-1.001", Up, "-1.01"},
		{"down", "1.019", Down, "1.01"},
		{"ceil negative", "-1.019", Ceil, "-1.01"},
		{"floor negative", "-1.011", Floor, "-1.02"},
		{"already exact", "5.50", Up, "5.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Currency(MustParse(tt.value), tt.mode)
			assert.True(t, got.Equal(MustParse(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestDiv_ZeroDivisor(t *testing.T) {
	_, err := Div(decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, ErrDivideByZero)

	q, err := Div(decimal.NewFromInt(1), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "0.3333333333333333", q.String())
}

func TestPow_Exact(t *testing.T) {
	got, err := Pow(MustParse("1.1"), 3)
	require.NoError(t, err)
	assert.True(t, got.Equal(MustParse("1.331")))

	one, err := Pow(MustParse("1.0877"), 0)
	require.NoError(t, err)
	assert.True(t, one.Equal(decimal.NewFromInt(1)))

	_, err = Pow(MustParse("2"), -1)
	assert.Error(t, err)
}

func TestSumMinMaxClamp(t *testing.T) {
	assert.True(t, Sum().IsZero())
	assert.True(t, Sum(MustParse("0.1"), MustParse("0.2")).Equal(MustParse("0.3")))

	lo, hi := decimal.Zero, decimal.NewFromInt(100)
	assert.True(t, Clamp(decimal.NewFromInt(120), lo, hi).Equal(hi))
	assert.True(t, Clamp(decimal.NewFromInt(-5), lo, hi).Equal(lo))
	assert.True(t, NonNegative(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, Max(lo, hi).Equal(hi))
	assert.True(t, Min(lo, hi).Equal(lo))
}

func TestWithinUnit(t *testing.T) {
	assert.True(t, WithinUnit(MustParse("10.00"), MustParse("10.01")))
	assert.False(t, WithinUnit(MustParse("10.00"), MustParse("10.02")))
}

func TestParse(t *testing.T) {
	d, err := Parse("1234.56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.StringFixed(2))

	_, err = Parse("12,34")
	assert.Error(t, err)
}
