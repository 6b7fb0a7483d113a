// Package report writes the per-document results of a transfer run.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fjacquet/budgea-salary/internal/fileutils"
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"
	"fjacquet/budgea-salary/internal/validation"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Supported report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// SheetName is the worksheet holding the results in XLSX reports.
const SheetName = "Transfers"

// Delimiter is the field separator of CSV reports.
var Delimiter = ','

var xlsxHeaders = []string{
	"Run ID", "File", "Employee", "IBAN", "Period", "Amount",
	"Recipient ID", "Recipient", "Status", "Transfer ID", "State", "Error", "OCR",
}

// Generator renders transfer results in the supported formats.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text", nil)
	}
	return &Generator{logger: logger}
}

// ResolveFormat returns format when set, otherwise the format implied by the
// extension of path.
func ResolveFormat(format, path string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case "":
		return "", fmt.Errorf("cannot infer report format from %q", path)
	case "yml":
		f = FormatYAML
	}
	if err := validation.IsValidReportFormat(f); err != nil {
		return "", err
	}
	return f, nil
}

// Generate renders results as csv, json or yaml.
// XLSX is binary and only available through WriteFile.
func (g *Generator) Generate(results []models.TransferResult, format string) ([]byte, error) {
	if results == nil {
		results = []models.TransferResult{}
	}
	switch format {
	case FormatCSV:
		return g.generateCSV(results)
	case FormatJSON:
		return g.generateJSON(results)
	case FormatYAML:
		return g.generateYAML(results)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteFile writes results to path. An empty format is inferred from the
// file extension.
func (g *Generator) WriteFile(results []models.TransferResult, path, format string) error {
	f, err := ResolveFormat(format, path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fileutils.EnsureDirectoryExists(dir); err != nil {
			return fmt.Errorf("error creating report directory: %w", err)
		}
	}

	if f == FormatXLSX {
		err = g.writeXLSX(results, path)
	} else {
		var data []byte
		data, err = g.Generate(results, f)
		if err == nil {
			err = os.WriteFile(path, data, 0600)
		}
	}
	if err != nil {
		g.logger.WithError(err).Error("Failed to write report",
			logging.F(logging.FieldOutputFile, path))
		return fmt.Errorf("error writing %s report: %w", f, err)
	}

	g.logger.Info("Report written",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(results)))
	return nil
}

func (g *Generator) generateCSV(results []models.TransferResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = Delimiter
	if err := gocsv.MarshalCSV(results, gocsv.NewSafeCSVWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) generateJSON(results []models.TransferResult) ([]byte, error) {
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}

func (g *Generator) generateYAML(results []models.TransferResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeXLSX(results []models.TransferResult, path string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			g.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	for col, h := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}

	for i, r := range results {
		row := []interface{}{
			r.RunID, r.File, r.Employee, r.IBAN, r.Period, amountCell(r.Amount),
			idCell(r.RecipientID), r.RecipientLabel, r.Status, idCell(r.TransferID),
			r.State, r.Error, r.OCR,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// amountCell stores amounts as numbers so spreadsheets can sum them.
func amountCell(amount string) interface{} {
	if amount == "" {
		return ""
	}
	if v, err := strconv.ParseFloat(amount, 64); err == nil {
		return v
	}
	return amount
}

func idCell(id int64) interface{} {
	if id == 0 {
		return ""
	}
	return id
}
