package payslip

import (
	"math/big"
	"strings"
	"unicode"
)

// IBANLength is the length of a compact French IBAN.
const IBANLength = 27

// NormalizeIBAN strips separators from an IBAN and uppercases it.
func NormalizeIBAN(iban string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '\u00a0', r == '-':
			return -1
		default:
			return unicode.ToUpper(r)
		}
	}, iban)
}

// GroupIBAN renders a compact IBAN in blocks of four characters.
func GroupIBAN(iban string) string {
	compact := NormalizeIBAN(iban)
	var b strings.Builder
	for i, r := range compact {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidIBAN checks the ISO 7064 mod-97 checksum of an IBAN.
func ValidIBAN(iban string) bool {
	compact := NormalizeIBAN(iban)
	if len(compact) < 5 {
		return false
	}

	var digits strings.Builder
	for _, r := range compact[4:] + compact[:4] {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			digits.WriteString(big.NewInt(int64(r-'A') + 10).String())
		default:
			return false
		}
	}

	n, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(n, big.NewInt(97)).Int64() == 1
}
