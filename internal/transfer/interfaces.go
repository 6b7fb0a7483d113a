// Package transfer drives a salary run: payslips are read, extracted,
// matched to recipients, confirmed by the operator and paid.
package transfer

import (
	"context"

	"fjacquet/budgea-salary/internal/models"

	"github.com/shopspring/decimal"
)

// API is the part of the banking API a run needs.
type API interface {
	ListRecipients(ctx context.Context, sess models.Session, categories ...string) ([]models.Recipient, error)
	CreateRecipient(ctx context.Context, sess models.Session, label, iban, category string) (models.Recipient, []models.FieldDescriptor, error)
	CompleteRecipient(ctx context.Context, sess models.Session, id int64, values map[string]string) (models.Recipient, []models.FieldDescriptor, error)
	CreateTransfer(ctx context.Context, sess models.Session, recipientID int64, amount decimal.Decimal, label string) (models.Transfer, error)
	ValidateTransfer(ctx context.Context, sess models.Session, id int64, validated bool) (models.Transfer, error)
	GetTransfer(ctx context.Context, sess models.Session, id int64) (models.Transfer, error)
}

// Recognizer recovers the text of a document that has no usable text layer.
type Recognizer interface {
	Recognize(ctx context.Context, sess models.Session, filename string, data []byte) (string, error)
}

// DocumentReader gives access to the text and the bytes of a payslip.
type DocumentReader interface {
	ReadText(ctx context.Context, path string) (string, error)
	ReadBytes(path string) ([]byte, error)
}

// Operator is the human driving the run.
type Operator interface {
	Confirm(question string) (bool, error)
	Ask(label string) (string, error)
	Notify(n models.Notice)
	Summarize(employees []models.Employee)
}
