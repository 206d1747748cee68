// Package money formats amounts for display in a user's preferred currency.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is used for unknown currency codes.
const DefaultCurrency = "INR"

var symbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"AUD": "A$",
	"CAD": "C$",
	"JPY": "¥",
}

// Symbol returns the display symbol for code, falling back to the rupee.
func Symbol(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return symbols[DefaultCurrency]
}

// Format renders amount rounded to whole units with locale grouping:
// Indian lakh/crore grouping for INR, western thousands otherwise.
func Format(amount decimal.Decimal, currency string) string {
	tag := language.AmericanEnglish
	if _, ok := symbols[currency]; !ok || currency == "INR" {
		tag = language.MustParse("en-IN")
	}

	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	p := message.NewPrinter(tag)
	return sign + Symbol(currency) + p.Sprint(number.Decimal(rounded.IntPart(), number.MaxFractionDigits(0)))
}
