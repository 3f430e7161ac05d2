// Package money provides currency metadata helpers for the normalization
// pipeline: ISO-4217 code validation, symbol detection, minor-unit rounding,
// and conversion through an externally supplied rate table.
package money

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// IsValidCode reports whether code is a known ISO-4217 currency code.
func IsValidCode(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// NormalizeCode cleans a raw currency cell ("usd", `"EUR"`, "€") into an
// upper-case ISO code.
func NormalizeCode(value string) (string, bool) {
	cleaned := strings.Trim(strings.TrimSpace(value), "\"'")
	if cleaned == "" {
		return "", false
	}
	upper := strings.ToUpper(cleaned)
	if len(upper) == 3 && IsValidCode(upper) {
		return upper, true
	}
	return CodeForSymbol(cleaned)
}

// CodeForSymbol maps a currency symbol found in cell text to an ISO code.
// The dollar sign is checked last since several symbols embed it.
func CodeForSymbol(value string) (string, bool) {
	switch {
	case strings.Contains(value, "€"):
		return "EUR", true
	case strings.Contains(value, "£"):
		return "GBP", true
	case strings.Contains(value, "¥"):
		return "JPY", true
	case strings.Contains(value, "₽"):
		return "RUB", true
	case strings.Contains(value, "₹"):
		return "INR", true
	case strings.Contains(value, "₩"):
		return "KRW", true
	case strings.Contains(value, "₺"):
		return "TRY", true
	case strings.Contains(value, "₴"):
		return "UAH", true
	case strings.Contains(value, "R$"):
		return "BRL", true
	case strings.Contains(value, "$"):
		return "USD", true
	}
	return "", false
}

// Symbols lists every symbol CodeForSymbol recognizes, for callers that need
// to strip them from numeric text before parsing.
func Symbols() []string {
	return []string{"€", "£", "¥", "₽", "₹", "₩", "₺", "₴", "R$", "$"}
}

// RoundToMinorUnits rounds an amount to the currency's minor-unit precision
// (2 for most, 0 for JPY-style currencies).
func RoundToMinorUnits(amount decimal.Decimal, code string) decimal.Decimal {
	currency := money.GetCurrency(strings.ToUpper(code))
	if currency == nil {
		return amount.Round(2)
	}
	return amount.Round(int32(currency.Fraction))
}

// Display formats an amount with the currency's symbol and grouping rules.
func Display(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(code)
	currency := money.GetCurrency(code)
	if currency == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// RateTable maps a source currency code to its rate into the reporting
// currency. Rates are supplied by the caller; the pipeline never fetches.
type RateTable map[string]decimal.Decimal

// Convert applies the table rate for from -> to. A from==to conversion is the
// identity; a missing rate reports false and leaves the amount untouched.
func (t RateTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, true
	}
	rate, ok := t[from]
	if !ok || rate.IsZero() {
		return amount, false
	}
	return RoundToMinorUnits(amount.Mul(rate), to), true
}
