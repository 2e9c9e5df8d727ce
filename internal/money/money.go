// Package money formats rupee amounts for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const Symbol = "₹"

var locale = language.MustParse("en-IN")

// Format renders d with the rupee symbol and en-IN digit grouping. Whole amounts have no
// fraction digits; anything else is shown with two.
func Format(d decimal.Decimal) string {
	p := message.NewPrinter(locale)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	if d.IsInteger() {
		return sign + Symbol + p.Sprint(number.Decimal(d.IntPart()))
	}

	f := d.Round(2).InexactFloat64()

	return sign + Symbol + p.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Plain renders d without a symbol or grouping, as used in CSV files.
func Plain(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.String()
	}

	return d.StringFixed(2)
}
