package parsererror

import (
	"errors"
	"fmt"
)

// ParseError represents an error during parsing
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an error where the input file is not a document
// the pipeline can read (for example a file without a PDF header).
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string // Optional: a snippet of the actual content for debugging
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// DataExtractionError represents an error where specific required data could not be extracted
// from a payslip, even if the document itself was readable.
type DataExtractionError struct {
	FilePath       string
	FieldName      string
	RawDataSnippet string // Optional: a snippet of the raw data where extraction failed
	Reason         string
	Msg            string
}

func (e *DataExtractionError) Error() string {
	if e.RawDataSnippet != "" {
		return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s. Reason: %s. Raw data snippet: '%s'",
			e.FilePath, e.FieldName, e.Msg, e.Reason, e.RawDataSnippet)
	}
	return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s. Reason: %s",
		e.FilePath, e.FieldName, e.Msg, e.Reason)
}

// Stages at which a payslip can be dropped from a run.
const (
	StageRead     = "read"
	StageExtract  = "extract"
	StageOCR      = "ocr"
	StageMatch    = "match"
	StageRegister = "register"
	StageTransfer = "transfer"
)

// SkipError marks a payslip that was dropped from the run. The run continues
// with the remaining files.
type SkipError struct {
	FilePath string
	Stage    string
	Err      error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipping '%s' at %s stage: %v", e.FilePath, e.Stage, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// IsSkip reports whether err, or any error it wraps, is a SkipError.
func IsSkip(err error) bool {
	var skip *SkipError
	return errors.As(err, &skip)
}
