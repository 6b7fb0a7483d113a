package models

import "github.com/shopspring/decimal"

// Provider category labels for payroll recipients.
const (
	CategorySalaried = "Salariés"
	CategoryIntern   = "Stagiaires"
)

// DefaultAllowedCategories are the recipient categories eligible for salary transfers.
var DefaultAllowedCategories = []string{CategorySalaried, CategoryIntern}

// Recipient is a payee registered on the banking API.
type Recipient struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	IBAN     string `json:"iban"`
	BankName string `json:"bank_name"`
}

// FieldDescriptor is a supplemental input requested by the provider while
// registering a recipient.
type FieldDescriptor struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Account is a bank account able to emit transfers.
type Account struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Balance          decimal.Decimal `json:"balance"`
	FormattedBalance string          `json:"formatted_balance"`
}

// Transfer states reported by the provider. Other values are passed through as-is.
const (
	TransferPending    = "pending"
	TransferProcessing = "processing"
	TransferDone       = "done"
	TransferError      = "error"
)

// Transfer is a transfer created on the banking API.
type Transfer struct {
	ID     int64           `json:"id"`
	State  string          `json:"state"`
	Amount decimal.Decimal `json:"amount"`
	Label  string          `json:"label"`
}
