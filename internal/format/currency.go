// Package format renders amounts and dates for an account's locale.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	fallbackLocale   = "en-US"
	fallbackCurrency = "EUR"
)

// Languages that write the currency symbol after the number, separated by
// a space ("1.300,00 €").
var suffixSymbol = map[string]bool{
	"pt": true, "de": true, "fr": true, "es": true, "it": true,
	"pl": true, "cs": true, "sk": true, "fi": true, "sv": true,
	"nb": true, "da": true, "ru": true, "uk": true, "hu": true,
}

// Currency formats value as money in the given locale and ISO currency.
// Unknown locales fall back to en-US and unknown currencies to EUR.
//
//	Currency(1300, "en-US", "USD") -> "$1,300.00"
//	Currency(-306.5, "pt-PT", "EUR") -> "-306,50 €"
func Currency(value decimal.Decimal, locale, cur string) string {
	tag := parseLocale(locale)
	unit := parseCurrency(cur)
	p := message.NewPrinter(tag)

	scale, _ := currency.Standard.Rounding(unit)
	abs := value.Abs().Round(int32(scale))
	num := p.Sprint(number.Decimal(abs.InexactFloat64(), number.Scale(scale)))
	sym := p.Sprint(currency.Symbol(unit))

	var b strings.Builder
	if value.Round(int32(scale)).IsNegative() {
		b.WriteByte('-')
	}
	base, _ := tag.Base()
	if suffixSymbol[base.String()] {
		b.WriteString(num)
		b.WriteString(" ")
		b.WriteString(sym)
	} else {
		b.WriteString(sym)
		b.WriteString(num)
	}
	return b.String()
}

func parseLocale(locale string) language.Tag {
	if locale != "" {
		if tag, err := language.Parse(locale); err == nil {
			return tag
		}
	}
	return language.MustParse(fallbackLocale)
}

func parseCurrency(cur string) currency.Unit {
	if cur != "" {
		if unit, err := currency.ParseISO(cur); err == nil {
			return unit
		}
	}
	return currency.MustParseISO(fallbackCurrency)
}
