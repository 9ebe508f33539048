package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fraction digits kept for amounts
const MoneyScale = 2

// NormalizeAmount rounds an amount half-up to cents
func NormalizeAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ParseAmount parses a decimal string into a cent-rounded amount.
// Both dot (12.34) and comma (12,34) separators are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return NormalizeAmount(d), nil
}

// FormatAmount renders an amount with two fraction digits
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
