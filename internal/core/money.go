// Package core provides the account model, money parsing and the pure
// derivations (user names, summaries, movement rows) the views are built from.
//
// This file contains the parsers for amounts and pins typed into forms.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPin    = errors.New("invalid pin")
)

// Bounds on typed numbers. Decimal comparisons rescale to a common
// exponent, so an unbounded exponent makes every later operation on the
// value arbitrarily expensive.
const (
	maxAmountIntegerDigits  = 15
	maxAmountFractionDigits = 8
	maxPinDigits            = 9
)

// withinDigits reports whether d has at most intDigits digits before the
// point and fracDigits after it. Only the exponent and the coefficient
// length are inspected, never a rescaled value.
func withinDigits(d decimal.Decimal, intDigits, fracDigits int) bool {
	exp := int(d.Exponent())
	if exp < -fracDigits {
		return false
	}
	return d.NumDigits()+exp <= intDigits
}

// ParseAmount converts user-entered text to a decimal amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Blank input parses to zero, mirroring a numeric form field left empty,
// so callers reject it through their "amount > 0" guard. Anything that is
// not a finite number, or that has more than 15 integer or 8 fraction
// digits (exponent notation included), returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("100")    -> 100, nil
//	ParseAmount("12,5")   -> 12.5, nil
//	ParseAmount("")       -> 0, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
//	ParseAmount("1e30")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err == nil && d.IsZero() {
		return decimal.Zero, nil
	}
	if err != nil || !withinDigits(d, maxAmountIntegerDigits, maxAmountFractionDigits) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseLoanAmount parses the amount and floors it to a whole unit.
func ParseLoanAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Floor(), nil
}

// ParsePin converts the pin field to its numeric value. "1111", " 1111 "
// and "1111.0" all parse to 1111; fractional or non-numeric input fails.
func ParsePin(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPin
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !withinDigits(d, maxPinDigits, maxPinDigits) || !d.Equal(d.Truncate(0)) {
		return 0, ErrInvalidPin
	}
	return int(d.IntPart()), nil
}
