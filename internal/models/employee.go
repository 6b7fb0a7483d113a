// Package models contains the domain types shared by the extraction, matching
// and transfer packages.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Required employee fields, as reported by Missing.
const (
	FieldName   = "name"
	FieldSalary = "salary"
)

// Employee is the payroll data extracted from one payslip.
//
// Absent text fields are empty strings and absent salaries have Valid set to
// false; nothing is ever defaulted. An Employee is built once by the extractor
// and only changes through WithRecipient, which returns a copy.
type Employee struct {
	Name   string
	Salary decimal.NullDecimal
	IBAN   string
	Period string

	// Source is the document the fields were read from.
	Source string
	// OCR is true when the fields come from the OCR fallback.
	OCR bool

	Recipient *Recipient
}

// HasName reports whether a name was extracted.
func (e Employee) HasName() bool { return e.Name != "" }

// HasIBAN reports whether an IBAN was extracted.
func (e Employee) HasIBAN() bool { return e.IBAN != "" }

// HasPeriod reports whether a pay period was extracted.
func (e Employee) HasPeriod() bool { return e.Period != "" }

// IsValid reports whether both the name and the salary are present.
func (e Employee) IsValid() bool {
	return e.HasName() && e.Salary.Valid
}

// Missing lists the required fields that could not be extracted.
func (e Employee) Missing() []string {
	var missing []string
	if !e.HasName() {
		missing = append(missing, FieldName)
	}
	if !e.Salary.Valid {
		missing = append(missing, FieldSalary)
	}
	return missing
}

// FirstName returns the first whitespace-delimited token of the name.
func (e Employee) FirstName() string {
	tokens := strings.Fields(e.Name)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// NameTokens returns the whitespace-delimited tokens of the name.
func (e Employee) NameTokens() []string {
	return strings.Fields(e.Name)
}

// WithRecipient returns a copy of the employee resolved to r.
func (e Employee) WithRecipient(r Recipient) Employee {
	e.Recipient = &r
	return e
}
