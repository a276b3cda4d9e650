package dto

import "github.com/shopspring/decimal"

const displayPlaces = 2

// Round prepares an amount for display. Stored values keep full precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(displayPlaces)
}

func RoundNull(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(Round(d.Decimal))
}
