package utils

import (
	"fmt"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/shopspring/decimal"
)

// currencyPrecision is the number of minor-unit digits per currency.
var currencyPrecision = map[domain.Currency]int32{
	domain.CDF: 2,
	domain.USD: 2,
}

// Precision returns the minor-unit digits of a currency, 2 when unknown.
func Precision(currency domain.Currency) int32 {
	if p, ok := currencyPrecision[currency]; ok {
		return p
	}
	return 2
}

// MinorToDecimal converts an amount in minor units to major units.
// Example: 12345 CDF -> 123.45
func MinorToDecimal(amountMinor int64, currency domain.Currency) decimal.Decimal {
	return decimal.New(amountMinor, -Precision(currency))
}

// FormatMinor renders an amount in minor units with the currency precision.
// Example: 12345 USD -> "123.45"
func FormatMinor(amountMinor int64, currency domain.Currency) string {
	p := Precision(currency)
	return decimal.New(amountMinor, -p).StringFixed(p)
}

// DecimalToMinor converts major units to minor units. Amounts finer than the currency precision are rejected.
func DecimalToMinor(amount decimal.Decimal, currency domain.Currency) (int64, error) {
	p := Precision(currency)
	scaled := amount.Shift(p)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount.String(), p)
	}
	if scaled.GreaterThan(decimal.NewFromInt(1<<62)) || scaled.LessThan(decimal.NewFromInt(-(1 << 62))) {
		return 0, fmt.Errorf("amount %s is out of range", amount.String())
	}
	return scaled.IntPart(), nil
}
