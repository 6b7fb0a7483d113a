// Package payslip extracts payroll fields from the text of a payslip.
//
// Every field is located by its own pattern and extraction never fails: a
// field that cannot be found, or whose value cannot be parsed, is left absent
// on the returned employee.
package payslip

import (
	"regexp"
	"strings"

	"fjacquet/budgea-salary/internal/currencyutils"
	"fjacquet/budgea-salary/internal/models"

	"github.com/shopspring/decimal"
)

// sp matches the separators found between words once a PDF has been turned
// into text, including the no-break spaces of French typography.
const sp = `[\s\x{00A0}\x{202F}]`

var (
	// "Net à payer : 1 234,56 euros". The accent is optional because lossy
	// decoding of raw bytes drops it.
	salaryPattern = regexp.MustCompile(`(?i)Net` + sp + `*(?:à|a)?` + sp + `*payer` + sp + `*:` + sp + `*(\d[\d\s\x{00A0}\x{202F}.,]*?)` + sp + `*(?:euros?|€|EUR)`)

	ibanPattern = regexp.MustCompile(`(?i)\bFR\d{2}(?:[ \x{00A0}]?[A-Z0-9]{4}){5}[ \x{00A0}]?[A-Z0-9]{3}`)

	namePattern = regexp.MustCompile(`\b(?:Mademoiselle|Madame|Monsieur|MADEMOISELLE|MADAME|MONSIEUR)[ \x{00A0}]+([^)\r\n]+)`)

	periodPattern = regexp.MustCompile(`(?i)\b(?:janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre|january|february|march|april|may|june|july|august|september|october|november|december)[ \x{00A0}]+20\d\d\b`)
)

// Extract builds an employee from payslip text. Invalid UTF-8 sequences, as
// left by lossy PDF decoding, are dropped first.
func Extract(text string) models.Employee {
	text = strings.ToValidUTF8(text, "")
	return models.Employee{
		Name:   ExtractName(text),
		Salary: ExtractSalary(text),
		IBAN:   ExtractIBAN(text),
		Period: ExtractPeriod(text),
	}
}

// ExtractSalary returns the net pay amount, normalized with
// currencyutils.ParseFrenchAmount.
func ExtractSalary(text string) decimal.NullDecimal {
	m := salaryPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.NullDecimal{}
	}
	amount, err := currencyutils.ParseFrenchAmount(m[1])
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount)
}

// ExtractIBAN returns the first French IBAN in text in its compact form.
func ExtractIBAN(text string) string {
	return NormalizeIBAN(ibanPattern.FindString(text))
}

// ExtractName returns the name following the first civility marker.
func ExtractName(text string) string {
	m := namePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(m[1], "\u00a0", " "))
}

// ExtractPeriod returns the first "<month> <year>" label, as written.
func ExtractPeriod(text string) string {
	return periodPattern.FindString(text)
}
