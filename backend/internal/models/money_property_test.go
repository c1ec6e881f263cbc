package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func drawMoney(t *rapid.T, label string) Money {
	// Cent-granular amounts in a realistic balance range.
	cents := rapid.Int64Range(-99_999_999_99, 99_999_999_99).Draw(t, label)
	return NewMoney(decimal.New(cents, -2), DefaultCurrency)
}

func TestProperty_MoneyAddSubtractInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawMoney(t, "a")
		b := drawMoney(t, "b")

		sum, err := a.Add(b)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		back, err := sum.Subtract(b)
		if err != nil {
			t.Fatalf("Subtract failed: %v", err)
		}
		if !back.Equal(a) {
			t.Fatalf("(%s + %s) - %s = %s, want %s", a, b, b, back, a)
		}
	})
}

func TestProperty_MoneyMultiplyMatchesRepeatedAdd(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := drawMoney(t, "m")
		n := rapid.Int64Range(0, 50).Draw(t, "n")

		sum := ZeroMoney(DefaultCurrency)
		for i := int64(0); i < n; i++ {
			var err error
			sum, err = sum.Add(m)
			if err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}
		if got := m.MultiplyQuantity(n); !got.Equal(sum) {
			t.Fatalf("%s * %d = %s, want %s", m, n, got, sum)
		}
	})
}

func TestProperty_MoneyArithmeticIsExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawMoney(t, "a")
		qty := rapid.Int64Range(1, 10_000).Draw(t, "qty")

		// Multiplying a cent-granular amount by an integer quantity must
		// stay cent-granular; no rounding may creep in.
		total := a.MultiplyQuantity(qty)
		if total.Amount.Exponent() < -2 {
			t.Fatalf("%s * %d = %s gained fractional cents", a, qty, total)
		}
	})
}
