package billing

import "github.com/shopspring/decimal"

// Monetary amounts are kept to two decimal places (paise precision).
const moneyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)

	// TotalTolerance is how far a client-supplied display total may diverge
	// from the server-side recomputation before the request is rejected.
	TotalTolerance = decimal.NewFromFloat(0.50)
)

// RoundMoney rounds to paise precision.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// RoundOffFor returns the signed adjustment that brings total to the nearest
// whole rupee, e.g. 1297.60 -> 0.40, 1297.40 -> -0.40.
func RoundOffFor(total decimal.Decimal) decimal.Decimal {
	return total.Round(0).Sub(total)
}
