package payslip

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIBAN(t *testing.T) {
	assert.Equal(t, "FR7630006000011234567890189", NormalizeIBAN("fr76 3000 6000 0112 3456 7890 189"))
	assert.Equal(t, "FR7630006000011234567890189", NormalizeIBAN("FR76-3000-6000-0112-3456-7890-189"))
	assert.Equal(t, "", NormalizeIBAN(""))
}

func TestGroupIBAN(t *testing.T) {
	assert.Equal(t, "FR76 3000 6000 0112 3456 7890 189", GroupIBAN("FR7630006000011234567890189"))
	assert.Equal(t, "", GroupIBAN(""))
}

func TestGroupIBAN_RoundTrip(t *testing.T) {
	sources := []string{
		"FR76 3000 6000 0112 3456 7890 189",
		"FR1420041010050500013M02606",
		"fr14 2004 1010 0505 0001 3m02 606",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			iban := ExtractIBAN(src)
			grouped := GroupIBAN(iban)
			assert.Equal(t,
				strings.ToUpper(strings.ReplaceAll(src, " ", "")),
				strings.ReplaceAll(grouped, " ", ""))
		})
	}
}

func TestValidIBAN(t *testing.T) {
	tests := []struct {
		iban  string
		valid bool
	}{
		{"FR7630006000011234567890189", true},
		{"FR76 3000 6000 0112 3456 7890 189", true},
		{"FR1420041010050500013M02606", true},
		{"GB82WEST12345698765432", true},
		{"FR7630006000011234567890188", false},
		{"FR76", false},
		{"FR76300060000112345678901#9", false},
	}

	for _, tt := range tests {
		t.Run(tt.iban, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidIBAN(tt.iban))
		})
	}
}
