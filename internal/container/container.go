// Package container provides dependency injection for the budgea-salary application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"
	"sync"

	"fjacquet/budgea-salary/internal/budgea"
	"fjacquet/budgea-salary/internal/config"
	"fjacquet/budgea-salary/internal/console"
	"fjacquet/budgea-salary/internal/fileutils"
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/ocr"
	"fjacquet/budgea-salary/internal/pdfparser"
	"fjacquet/budgea-salary/internal/report"
	"fjacquet/budgea-salary/internal/retry"
	"fjacquet/budgea-salary/internal/transfer"
)

// WorkspacePrefix names the run-scoped temporary directory.
const WorkspacePrefix = "budgea-salary-"

// Option customizes a Container.
type Option func(*settings)

type settings struct {
	console   *console.Console
	logOutput io.Writer
}

// WithConsole replaces the stdio console.
func WithConsole(c *console.Console) Option {
	return func(s *settings) { s.console = c }
}

// WithLogOutput sends log lines to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(s *settings) { s.logOutput = w }
}

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. Close must be called on every exit
// path: it removes the temporary workspace and releases the OCR client.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	client     *budgea.Client
	workspace  *fileutils.Workspace
	reader     *pdfparser.DocumentReader
	recognizer transfer.Recognizer
	gemini     *ocr.GeminiRecognizer
	console    *console.Console
	reports    *report.Generator

	closeOnce sync.Once
	closeErr  error
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format, s.logOutput)

	client := budgea.NewClient(
		budgea.WithBaseURL(cfg.API.BaseURL),
		budgea.WithApplication(cfg.API.Application, cfg.API.Scope),
		budgea.WithTimeout(cfg.Timeout()),
		budgea.WithRateLimit(cfg.API.RequestsPerSecond),
		budgea.WithLogger(logger),
	)

	converter, err := pdfparser.NewConverter(cfg.PDF.Converter)
	if err != nil {
		return nil, err
	}
	extractor, err := pdfparser.NewTextExtractor(cfg.PDF.TextExtractor)
	if err != nil {
		return nil, err
	}

	workspace, err := fileutils.NewWorkspace(WorkspacePrefix, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		logger:    logger,
		config:    cfg,
		client:    client,
		workspace: workspace,
		reader:    pdfparser.NewDocumentReader(converter, extractor, workspace, logger),
		console:   s.console,
		reports:   report.NewGenerator(logger),
	}
	if c.console == nil {
		c.console = console.NewStdio()
	}

	switch cfg.OCR.Provider {
	case config.OCRProviderAPI:
		c.recognizer = client
	case config.OCRProviderGemini:
		g, err := ocr.NewGeminiRecognizer(ctx, cfg.OCR.APIKey, cfg.OCR.Model, logger)
		if err != nil {
			_ = workspace.Remove()
			return nil, err
		}
		c.gemini = g
		c.recognizer = g
	}

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldProvider, cfg.OCR.Provider),
		logging.F("converter", cfg.PDF.Converter),
		logging.F("text_extractor", cfg.PDF.TextExtractor))

	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetClient returns the banking API client.
func (c *Container) GetClient() *budgea.Client {
	return c.client
}

// GetReader returns the document reader bound to the run workspace.
func (c *Container) GetReader() *pdfparser.DocumentReader {
	return c.reader
}

// GetRecognizer returns the configured OCR backend, or nil when OCR is disabled.
func (c *Container) GetRecognizer() transfer.Recognizer {
	return c.recognizer
}

// GetConsole returns the operator console.
func (c *Container) GetConsole() *console.Console {
	return c.console
}

// GetReportGenerator returns the batch report writer.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}

// GetWorkspace returns the run-scoped temporary directory.
func (c *Container) GetWorkspace() *fileutils.Workspace {
	return c.workspace
}

// RetryPolicy returns the lock retry policy built from the configuration.
func (c *Container) RetryPolicy() retry.Policy {
	return retry.NewPolicy(c.config.LockRetryDelay(), uint64(c.config.Transfer.LockMaxAttempts), budgea.IsLocked, c.logger)
}

// TransferOptions returns the orchestrator options built from the configuration.
func (c *Container) TransferOptions() transfer.Options {
	opts := transfer.DefaultOptions()
	opts.AllowedCategories = c.config.Transfer.AllowedCategories
	opts.NewRecipientCategory = c.config.Transfer.NewRecipientCategory
	opts.LabelPrefix = c.config.Transfer.LabelPrefix
	opts.ConfirmEach = c.config.Transfer.ConfirmEach
	opts.PollAttempts = c.config.Transfer.PollAttempts
	return opts
}

// NewOrchestrator wires an orchestrator. withOCR false disables the
// recognizer even when one is configured.
func (c *Container) NewOrchestrator(withOCR bool) *transfer.Orchestrator {
	var recognizer transfer.Recognizer
	if withOCR {
		recognizer = c.recognizer
	}
	return transfer.NewOrchestrator(c.client, c.reader, recognizer, c.console,
		c.RetryPolicy(), c.TransferOptions(), c.logger)
}

// Close removes the workspace and releases the OCR client. It is safe to
// call more than once and from a signal handler.
func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		if c.gemini != nil {
			if err := c.gemini.Close(); err != nil {
				c.logger.WithError(err).Warn("Failed to close OCR client")
			}
		}
		c.closeErr = c.workspace.Remove()
		c.logger.Debug("Container closed")
	})
	return c.closeErr
}
