package logging

// Standardized field names for structured logging.
const (
	FieldFile        = "file_path"
	FieldField       = "field"
	FieldEmployee    = "employee"
	FieldIBAN        = "iban"
	FieldAccountID   = "account_id"
	FieldRecipientID = "recipient_id"
	FieldTransferID  = "transfer_id"
	FieldState       = "state"
	FieldRunID       = "run_id"
	FieldCode        = "code"
	FieldAttempt     = "attempt"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldProvider    = "provider"
	FieldOutputFile  = "output_file"
)
