// Package core provides money parsing and handling utilities.
//
// Amounts are decimal.Decimal values rounded to cents. Text follows the
// Brazilian convention: "." groups thousands and "," separates cents.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts user-entered currency text into a decimal amount.
//
// It accepts an optional "R$" prefix. A dot groups thousands, except when
// the text has no comma and a single dot followed by one or two digits,
// which reads as a decimal point. Half-up rounding is applied on the third
// decimal place.
//
// Examples:
//
//	ParseAmount("R$ 1.234,56") -> 1234.56
//	ParseAmount("1234,56")     -> 1234.56
//	ParseAmount("1.500")       -> 1500
//	ParseAmount("1234.56")     -> 1234.56
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "r$") {
		s = strings.TrimSpace(s[2:])
	}
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case !isDotDecimal(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	if s == "" || s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return d.Round(2), nil
}

// isDotDecimal reports whether s has one dot with one or two digits after it.
func isDotDecimal(s string) bool {
	i := strings.IndexByte(s, '.')
	if i < 0 || strings.Count(s, ".") != 1 {
		return false
	}
	frac := len(s) - i - 1
	return frac == 1 || frac == 2
}

// MustParseAmount is ParseAmount for literals known to be valid.
func MustParseAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ToCents converts an amount to integer cents for storage.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts stored cents back to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatBRL renders an amount as "R$ 1.234,56"; negatives as "R$ -1.234,56".
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + formatGrouped(d)
}

// FormatDecimalComma renders an amount with two decimals, a comma and no grouping.
func FormatDecimalComma(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// MaskCurrencyInput formats raw keystrokes as a currency value, reading the
// digits as cents: "1234" -> "R$ 12,34". Text without digits yields "".
func MaskCurrencyInput(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	cents, err := decimal.NewFromString(digits.String())
	if err != nil {
		return ""
	}
	return FormatBRL(cents.Shift(-2))
}

func formatGrouped(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
