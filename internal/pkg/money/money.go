// Package money formats amounts held in minor units (cents).
package money

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts in cents for a locale
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a formatter for locale, falling back to French
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.French
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format renders cents in the given ISO currency, e.g. "€ 25.90"
func (f *Formatter) Format(cents int64, iso string) string {
	amount := float64(cents) / 100
	unit, err := currency.ParseISO(strings.ToUpper(iso))
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(iso))
	}
	return f.printer.Sprint(currency.Symbol(unit.Amount(amount)))
}

// Decimal renders cents as a plain decimal string, e.g. "25.90"
func Decimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
