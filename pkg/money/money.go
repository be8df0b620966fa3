// Package money centralizes the decimal arithmetic behind order totals so
// float drift never reaches a stored amount.
package money

import "github.com/shopspring/decimal"

var (
	taxRate           = decimal.NewFromFloat(0.10)
	flatShipping      = decimal.NewFromFloat(10.00)
	freeShippingFloor = decimal.NewFromInt(100)
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Tax returns the 10% tax on a subtotal, rounded to cents.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Mul(taxRate))
}

// Shipping returns the flat shipping fee: 10.00 below the free-shipping
// floor of 100.00, zero at or above it.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(freeShippingFloor) {
		return flatShipping
	}
	return decimal.Zero
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(price float64, qty int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
}

// Cents converts an amount to integer cents for the payment gateway.
func Cents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Floor returns the whole-unit floor of an amount, used for loyalty points.
func Floor(amount float64) int {
	return int(decimal.NewFromFloat(amount).Floor().IntPart())
}
