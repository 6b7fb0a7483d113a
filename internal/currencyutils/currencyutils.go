// Package currencyutils provides the amount normalization and display helpers
// used for payslip salaries and transfer amounts.
package currencyutils

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the only currency payslips and transfers are expressed in.
const Currency = money.EUR

// ParseFrenchAmount parses an amount written with French conventions into a
// decimal, applying a single normalization rule whatever path the text came
// from (text layer, raw bytes or OCR):
//
//   - spaces, tabs and no-break spaces are thousands separators ("1 234,56");
//   - a comma is the decimal separator;
//   - when a comma is present, dots are thousands separators ("1.234,56");
//   - without a comma, a single dot is a decimal point ("1234.56") and several
//     dots are thousands separators ("1.234.567").
func ParseFrenchAmount(raw string) (decimal.Decimal, error) {
	s := StandardizeAmount(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount %q", raw)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", raw, err)
	}
	return amount, nil
}

// StandardizeAmount rewrites a French-formatted amount into the form accepted
// by decimal.NewFromString. It does not validate the result.
func StandardizeAmount(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, raw)
	s = strings.Trim(s, ".,")

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

// ToCents converts an amount to integer minor units, rounding half away from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FormatEUR renders an amount for the operator, e.g. "€1,234.56".
func FormatEUR(amount decimal.Decimal) string {
	return money.New(ToCents(amount), Currency).Display()
}

// FormatForm renders an amount the way the banking API expects it in form
// bodies: a dot decimal separator and exactly two decimals.
func FormatForm(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
