package extract_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/budgea-salary/cmd/extract"
	"fjacquet/budgea-salary/internal/config"
	"fjacquet/budgea-salary/internal/console"
	"fjacquet/budgea-salary/internal/container"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newContainer(t *testing.T, provider string) (*container.Container, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Log: config.LogConfig{Level: "info", Format: "text"},
		API: config.APIConfig{BaseURL: "http://127.0.0.1:1", Application: "Android", TimeoutSeconds: 1},
		Transfer: config.TransferConfig{
			AllowedCategories:    []string{"Salariés"},
			NewRecipientCategory: "Salariés",
		},
		PDF: config.PDFConfig{Converter: config.ConverterNone, TextExtractor: config.ExtractorRaw},
		OCR: config.OCRConfig{Provider: provider},
	}
	var out bytes.Buffer
	c, err := container.NewContainer(context.Background(), cfg,
		container.WithConsole(console.New(strings.NewReader(""), &out)),
		container.WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, &out
}

func TestRun_Offline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte(`%PDF-1.4
(Monsieur John Smith)
Net à payer : 2 000,00 euros
Bulletin de salaire (Février 2024)
`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF-1.4\nnothing here\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600))

	c, out := newContainer(t, config.OCRProviderAPI)

	require.NoError(t, extract.Run(context.Background(), c, []string{dir}, extract.Options{}))

	text := out.String()
	assert.Contains(t, text, "John Smith")
	assert.Contains(t, text, "€")
	assert.Contains(t, text, "Février 2024")
	assert.Contains(t, text, "no OCR provider configured")
	assert.NotContains(t, text, "notes.txt")
}

func TestRun_OCRDisabledWarns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nnothing here\n"), 0600))

	c, out := newContainer(t, config.OCRProviderNone)

	require.NoError(t, extract.Run(context.Background(), c, []string{path}, extract.Options{OCR: true}))
	assert.Contains(t, out.String(), "ignoring --ocr")
}

func TestRun_MissingFile(t *testing.T) {
	c, _ := newContainer(t, config.OCRProviderNone)
	assert.Error(t, extract.Run(context.Background(), c, []string{"/does/not/exist.pdf"}, extract.Options{}))
}
