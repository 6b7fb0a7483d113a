// Package pdfparser turns payslip PDFs into text: a Converter rewrites the
// document into a clean file and a TextExtractor reads its text.
package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text extractor names accepted by NewTextExtractor.
const (
	ExtractorPDF       = "pdf"
	ExtractorPdftotext = "pdftotext"
	ExtractorRaw       = "raw"
)

// TextExtractor defines the interface for extracting text from PDF files.
// This interface allows for dependency injection and makes the document reader
// testable by providing different implementations for production and testing.
type TextExtractor interface {
	// ExtractText extracts text content from a PDF file at the given path.
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewTextExtractor returns the extractor registered under name.
func NewTextExtractor(name string) (TextExtractor, error) {
	switch strings.ToLower(name) {
	case "", ExtractorPDF:
		return NewPDFTextExtractor(), nil
	case ExtractorPdftotext:
		return NewPdftotextExtractor(), nil
	case ExtractorRaw:
		return NewRawExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown text extractor %q", name)
	}
}

// PDFTextExtractor reads the text layer with github.com/ledongthuc/pdf.
type PDFTextExtractor struct{}

// NewPDFTextExtractor creates a new PDFTextExtractor instance.
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

// ExtractText returns the plain text of every page.
func (e *PDFTextExtractor) ExtractText(_ context.Context, pdfPath string) (text string, err error) {
	// The library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("error reading text layer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("error reading text layer: %w", err)
	}
	return buf.String(), nil
}

// PdftotextExtractor runs the poppler pdftotext command in layout mode.
type PdftotextExtractor struct {
	Binary string
}

// NewPdftotextExtractor creates a new PdftotextExtractor instance.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{Binary: "pdftotext"}
}

// ExtractText extracts text from a PDF file using the pdftotext command.
func (e *PdftotextExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Binary, "-layout", "-enc", "UTF-8", pdfPath, "-") // #nosec G204 -- binary is configured, not user input
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// RawExtractor decodes the file bytes as UTF-8, dropping invalid sequences.
// It works on uncompressed files such as those written by `mutool clean -d`.
type RawExtractor struct{}

// NewRawExtractor creates a new RawExtractor instance.
func NewRawExtractor() *RawExtractor {
	return &RawExtractor{}
}

// ExtractText returns the lossily decoded file content.
func (e *RawExtractor) ExtractText(_ context.Context, pdfPath string) (string, error) {
	data, err := os.ReadFile(pdfPath) // #nosec G304 -- reads a file of the run workspace
	if err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// MockExtractor implements TextExtractor for testing purposes.
// It returns predefined mock data instead of actually extracting from PDF files.
type MockExtractor struct {
	MockText string
	MockErr  error
	Calls    []string
}

// NewMockExtractor creates a new MockExtractor with the given mock data.
func NewMockExtractor(mockText string, mockErr error) *MockExtractor {
	return &MockExtractor{
		MockText: mockText,
		MockErr:  mockErr,
	}
}

// ExtractText returns the predefined mock text or error.
func (e *MockExtractor) ExtractText(_ context.Context, pdfPath string) (string, error) {
	e.Calls = append(e.Calls, pdfPath)
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}
