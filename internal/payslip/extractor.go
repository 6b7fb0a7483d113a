package payslip

import (
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"
)

// Extractor wraps the field functions with logging of the fields it misses.
type Extractor struct {
	logger logging.Logger
}

// NewExtractor creates an extractor logging through logger.
func NewExtractor(logger logging.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract extracts the employee described by the text of source.
func (x *Extractor) Extract(source, text string) models.Employee {
	e := Extract(text)
	e.Source = source
	x.report(e)
	return e
}

func (x *Extractor) report(e models.Employee) {
	log := x.logger.WithField(logging.FieldFile, e.Source)

	for _, field := range e.Missing() {
		log.Debug("Field not found", logging.F(logging.FieldField, field))
	}
	if !e.HasIBAN() {
		log.Debug("Field not found", logging.F(logging.FieldField, "iban"))
	} else if !ValidIBAN(e.IBAN) {
		log.Warn("IBAN checksum mismatch, keeping extracted value",
			logging.F(logging.FieldIBAN, GroupIBAN(e.IBAN)))
	}
	if !e.HasPeriod() {
		log.Debug("Field not found", logging.F(logging.FieldField, "period"))
	}
}
