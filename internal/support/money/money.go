// Package money converts between stored integer cents and decimal amounts used on the wire.
package money

import (
	"github.com/shopspring/decimal"
)

func init() {
	// 前端期望金额是数字而不是字符串。
	decimal.MarshalJSONWithoutQuotes = true
}

// FromCents converts stored cents to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents rounds a decimal amount half-away-from-zero to whole cents.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// MustParse parses a literal amount, panicking on malformed input. Use for constants only.
func MustParse(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// Multiply returns unit × quantity in cents.
func Multiply(unitCents int64, quantity int) int64 {
	return unitCents * int64(quantity)
}
