package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, s string) Money {
	t.Helper()
	m, err := MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func TestMoneyFromString(t *testing.T) {
	m, err := MoneyFromString("1000.00")
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, m.Currency)
	assert.True(t, m.Amount.Equal(decimal.NewFromInt(1000)))

	_, err = MoneyFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoneyAddSubtract(t *testing.T) {
	a := money(t, "10.10")
	b := money(t, "0.90")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(money(t, "11.00")))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(money(t, "9.20")))

	// Inputs are untouched.
	assert.True(t, a.Equal(money(t, "10.10")))
	assert.True(t, b.Equal(money(t, "0.90")))
}

func TestMoneyExactDecimalArithmetic(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, not a float approximation.
	sum, err := money(t, "0.1").Add(money(t, "0.2"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(money(t, "0.3")))
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	a := money(t, "5.00")
	b := NewMoney(decimal.NewFromInt(5), "USD")

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = a.Subtract(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = a.LessThan(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyMultiplyQuantity(t *testing.T) {
	total := money(t, "50.00").MultiplyQuantity(10)
	assert.True(t, total.Equal(money(t, "500.00")))

	total = money(t, "0.01").MultiplyQuantity(3)
	assert.True(t, total.Equal(money(t, "0.03")))
}

func TestMoneyComparisons(t *testing.T) {
	less, err := money(t, "9.99").LessThan(money(t, "10.00"))
	require.NoError(t, err)
	assert.True(t, less)

	less, err = money(t, "10.00").LessThan(money(t, "10.00"))
	require.NoError(t, err)
	assert.False(t, less)

	assert.True(t, money(t, "1.00").IsPositive())
	assert.False(t, money(t, "0").IsPositive())
	assert.True(t, money(t, "-1.00").IsNegative())
	assert.False(t, ZeroMoney(DefaultCurrency).IsNegative())
}
