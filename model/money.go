package model

import "github.com/shopspring/decimal"

func init() {
	// Amounts are rendered as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyScale is the number of fractional digits kept for balances and amounts.
const MoneyScale = 2

// HasMoneyScale reports whether d has no more than MoneyScale fractional digits.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}
