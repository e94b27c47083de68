// Package money formats cent amounts for Brazilian users.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders cents as R$ 1.234,56.
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "R$ " + printer.Sprintf("%d", cents/100) + printer.Sprintf(",%02d", cents%100)
}

// Share returns pct percent of cents, rounded down.
func Share(cents int64, pct int) int64 {
	if pct <= 0 || cents <= 0 {
		return 0
	}
	if pct >= 100 {
		return cents
	}
	return cents * int64(pct) / 100
}
