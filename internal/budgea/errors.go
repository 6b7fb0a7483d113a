package budgea

import (
	"errors"
	"fmt"
)

// Error codes the provider uses for a temporarily unavailable bank connection.
const (
	CodeConnectionLocked   = "connectionLocked"
	CodeTransferProcessing = "transferProcessing"
)

// APIError is an error reported by the banking API.
type APIError struct {
	Status      int    `json:"-"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Description
	}
	if detail == "" {
		return fmt.Sprintf("budgea: %s (HTTP %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("budgea: %s %s (HTTP %d)", e.Code, detail, e.Status)
}

// Locked reports whether the error is a transient lock on the provider side.
func (e *APIError) Locked() bool {
	return e.Code == CodeConnectionLocked || e.Code == CodeTransferProcessing
}

// IsLocked reports whether err is, or wraps, a transient lock APIError.
func IsLocked(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Locked()
}

// Code returns the provider error code carried by err, or "".
func Code(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
