package models

// Result statuses, one per input document.
const (
	StatusSkipped   = "skipped"
	StatusUnmatched = "unmatched"
	StatusMatched   = "matched"
	StatusDeclined  = "declined"
	StatusSubmitted = "submitted"
	StatusDone      = "done"
	StatusFailed    = "failed"
)

// TransferResult is one row of the batch report.
type TransferResult struct {
	RunID          string `csv:"run_id" json:"run_id" yaml:"run_id"`
	File           string `csv:"file" json:"file" yaml:"file"`
	Employee       string `csv:"employee" json:"employee" yaml:"employee"`
	IBAN           string `csv:"iban" json:"iban,omitempty" yaml:"iban,omitempty"`
	Period         string `csv:"period" json:"period,omitempty" yaml:"period,omitempty"`
	Amount         string `csv:"amount" json:"amount,omitempty" yaml:"amount,omitempty"`
	RecipientID    int64  `csv:"recipient_id" json:"recipient_id,omitempty" yaml:"recipient_id,omitempty"`
	RecipientLabel string `csv:"recipient_label" json:"recipient_label,omitempty" yaml:"recipient_label,omitempty"`
	Status         string `csv:"status" json:"status" yaml:"status"`
	TransferID     int64  `csv:"transfer_id" json:"transfer_id,omitempty" yaml:"transfer_id,omitempty"`
	State          string `csv:"state" json:"state,omitempty" yaml:"state,omitempty"`
	Error          string `csv:"error" json:"error,omitempty" yaml:"error,omitempty"`
	OCR            bool   `csv:"ocr" json:"ocr" yaml:"ocr"`
}

// NewResult starts a result row for an employee.
func NewResult(runID string, e Employee) TransferResult {
	r := TransferResult{
		RunID:    runID,
		File:     e.Source,
		Employee: e.Name,
		IBAN:     e.IBAN,
		Period:   e.Period,
		OCR:      e.OCR,
	}
	if e.Salary.Valid {
		r.Amount = e.Salary.Decimal.StringFixed(2)
	}
	if e.Recipient != nil {
		r.RecipientID = e.Recipient.ID
		r.RecipientLabel = e.Recipient.Label
	}
	return r
}
