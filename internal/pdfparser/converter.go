package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Converter names accepted by NewConverter.
const (
	ConverterPdfcpu = "pdfcpu"
	ConverterMutool = "mutool"
	ConverterNone   = "none"
)

// Converter rewrites a PDF into a normalized file that text extraction can
// read reliably (repairs broken cross-references, linearization, etc).
type Converter interface {
	Clean(ctx context.Context, src, dst string) error
}

// NewConverter returns the converter registered under name.
func NewConverter(name string) (Converter, error) {
	switch strings.ToLower(name) {
	case "", ConverterPdfcpu:
		return NewPdfcpuConverter(), nil
	case ConverterMutool:
		return NewMutoolConverter(), nil
	case ConverterNone:
		return CopyConverter{}, nil
	default:
		return nil, fmt.Errorf("unknown converter %q", name)
	}
}

// PdfcpuConverter rewrites documents with pdfcpu's optimizer.
type PdfcpuConverter struct {
	conf *model.Configuration
}

// NewPdfcpuConverter creates a converter using pdfcpu's default configuration.
func NewPdfcpuConverter() *PdfcpuConverter {
	return &PdfcpuConverter{conf: model.NewDefaultConfiguration()}
}

// Clean writes an optimized copy of src to dst.
func (c *PdfcpuConverter) Clean(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.OptimizeFile(src, dst, c.conf); err != nil {
		return fmt.Errorf("pdfcpu optimize failed: %w", err)
	}
	return nil
}

// MutoolConverter runs `mutool clean -d`, which also decompresses streams so
// the raw extractor can read the text operators.
type MutoolConverter struct {
	Binary string
}

// NewMutoolConverter creates a converter calling the mutool binary from PATH.
func NewMutoolConverter() *MutoolConverter {
	return &MutoolConverter{Binary: "mutool"}
}

// Clean writes a decompressed copy of src to dst.
func (c *MutoolConverter) Clean(ctx context.Context, src, dst string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Binary, "clean", "-d", src, dst) // #nosec G204 -- binary is configured, not user input
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mutool clean failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// CopyConverter copies the document unchanged.
type CopyConverter struct{}

// Clean copies src to dst.
func (CopyConverter) Clean(_ context.Context, src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error opening input file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst) // #nosec G304 -- path inside the run workspace
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("error copying file: %w", err)
	}
	return out.Close()
}

// MockConverter records its calls and copies the file unless Err is set.
type MockConverter struct {
	Err   error
	Calls int
}

// Clean implements Converter.
func (m *MockConverter) Clean(ctx context.Context, src, dst string) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return CopyConverter{}.Clean(ctx, src, dst)
}
