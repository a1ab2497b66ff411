package domain

import "github.com/shopspring/decimal"

// Cents is the precision every monetary amount is held at.
const Cents int32 = 2

// RoundMoney rounds half away from zero to cents. Amounts are never negative,
// so this is round-half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(Cents)
}

// MustAmount parses a literal amount. Intended for fee tables and fixtures.
func MustAmount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
