package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/budgea-salary/internal/fileutils"
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/parsererror"
)

var pdfMagic = []byte("%PDF-")

// DocumentReader turns a payslip into text. The cleaned intermediate file
// lives in the run workspace and is removed before ReadText returns.
type DocumentReader struct {
	converter Converter
	extractor TextExtractor
	fallback  TextExtractor
	workspace *fileutils.Workspace
	logger    logging.Logger
}

// NewDocumentReader creates a reader. When the extractor fails or finds no
// text, the cleaned file is decoded as raw bytes instead.
func NewDocumentReader(converter Converter, extractor TextExtractor, workspace *fileutils.Workspace, logger logging.Logger) *DocumentReader {
	return &DocumentReader{
		converter: converter,
		extractor: extractor,
		fallback:  NewRawExtractor(),
		workspace: workspace,
		logger:    logger,
	}
}

// ReadText returns the text of the document at path.
func (r *DocumentReader) ReadText(ctx context.Context, path string) (string, error) {
	log := r.logger.WithField(logging.FieldFile, path)

	if err := checkHeader(path); err != nil {
		return "", err
	}

	cleaned, cleanup, err := r.workspace.TempFile("clean-*.pdf")
	if err != nil {
		return "", err
	}
	defer cleanup()

	src := cleaned
	if err := r.converter.Clean(ctx, path, cleaned); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.WithError(err).Warn("Failed to clean document, reading original")
		src = path
	}

	text, err := r.extractor.ExtractText(ctx, src)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		log.WithError(err).Debug("Text extraction failed, decoding raw bytes")
	} else {
		log.Debug("Document has no text layer, decoding raw bytes")
	}

	text, err = r.fallback.ExtractText(ctx, src)
	if err != nil {
		return "", &parsererror.ParseError{
			Parser: "pdf",
			Field:  "text",
			Value:  path,
			Err:    err,
		}
	}
	return text, nil
}

// ReadBytes returns the unmodified document, as uploaded to OCR services.
func (r *DocumentReader) ReadBytes(path string) ([]byte, error) {
	return fileutils.ReadFile(path)
}

func checkHeader(path string) error {
	f, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error opening input file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("error reading input file: %w", err)
	}
	head = head[:n]

	if n == 0 {
		return &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "PDF",
			Msg:            "file is empty",
		}
	}
	if !bytes.Contains(head, pdfMagic) {
		snippet := head
		if len(snippet) > 16 {
			snippet = snippet[:16]
		}
		return &parsererror.InvalidFormatError{
			FilePath:             path,
			ExpectedFormat:       "PDF",
			ActualContentSnippet: strings.ToValidUTF8(string(snippet), "?"),
			Msg:                  "missing PDF header",
		}
	}
	return nil
}
