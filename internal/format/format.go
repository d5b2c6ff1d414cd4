// Package format renders amounts and rates the way the dashboard displays them.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"salesdash/internal/core"
)

// ThaiBaht is the display currency.
var ThaiBaht = currency.THB

const bahtSign = "฿"

var printer = message.NewPrinter(language.Thai)

// Decimal converts an amount to an exact decimal in baht.
func Decimal(m core.Money) decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Currency formats m as Thai baht with grouped thousands, e.g. ฿253,511.00.
func Currency(m core.Money) string {
	scale, _ := currency.Standard.Rounding(ThaiBaht)
	if scale < 2 {
		scale = 2
	}
	d := Decimal(m)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	frac := d.Sub(whole).StringFixed(int32(scale))
	return sign + bahtSign + printer.Sprintf("%d", whole.IntPart()) + strings.TrimPrefix(frac, "0")
}

// Number formats m with grouped thousands and two decimals, no symbol.
func Number(m core.Money) string {
	return strings.TrimPrefix(Currency(m), bahtSign)
}

// Percent formats a rate with one decimal, e.g. 42.5%.
func Percent(rate float64) string {
	return decimal.NewFromFloat(rate).StringFixed(1) + "%"
}

// Growth formats a rate with an explicit sign, e.g. +17.2% or -3.0%.
func Growth(rate float64) string {
	d := decimal.NewFromFloat(rate).Round(1)
	if d.IsPositive() {
		return "+" + d.StringFixed(1) + "%"
	}
	if d.IsZero() {
		return "0.0%"
	}
	return d.StringFixed(1) + "%"
}
