// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"fjacquet/budgea-salary/internal/validation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "BUDGEA"

// Supported component names.
const (
	ConverterPdfcpu = "pdfcpu"
	ConverterMutool = "mutool"
	ConverterNone   = "none"

	ExtractorPDF       = "pdf"
	ExtractorPdftotext = "pdftotext"
	ExtractorRaw       = "raw"

	OCRProviderAPI    = "api"
	OCRProviderGemini = "gemini"
	OCRProviderNone   = "none"
)

// LogConfig configures the logging adapter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// APIConfig configures the banking API client.
type APIConfig struct {
	BaseURL           string  `mapstructure:"base_url" yaml:"base_url"`
	Username          string  `mapstructure:"username" yaml:"username"`
	Application       string  `mapstructure:"application" yaml:"application"`
	Scope             string  `mapstructure:"scope" yaml:"scope"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// TransferConfig configures salary runs.
type TransferConfig struct {
	AllowedCategories    []string `mapstructure:"allowed_categories" yaml:"allowed_categories"`
	NewRecipientCategory string   `mapstructure:"new_recipient_category" yaml:"new_recipient_category"`
	LabelPrefix          string   `mapstructure:"label_prefix" yaml:"label_prefix"`
	LockRetrySeconds     int      `mapstructure:"lock_retry_seconds" yaml:"lock_retry_seconds"`
	// LockMaxAttempts bounds lock retries; 0 retries until the run is interrupted.
	LockMaxAttempts int  `mapstructure:"lock_max_attempts" yaml:"lock_max_attempts"`
	PollAttempts    int  `mapstructure:"poll_attempts" yaml:"poll_attempts"`
	ConfirmEach     bool `mapstructure:"confirm_each" yaml:"confirm_each"`
}

// PDFConfig selects the document cleaning and text extraction backends.
type PDFConfig struct {
	Converter     string `mapstructure:"converter" yaml:"converter"`
	TextExtractor string `mapstructure:"text_extractor" yaml:"text_extractor"`
}

// OCRConfig selects the recognizer used for documents without a text layer.
type OCRConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`
	APIKey   string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

// ReportConfig configures the batch report.
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Transfer TransferConfig `mapstructure:"transfer" yaml:"transfer"`
	PDF      PDFConfig      `mapstructure:"pdf" yaml:"pdf"`
	OCR      OCRConfig      `mapstructure:"ocr" yaml:"ocr"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// Timeout returns the per-request API timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// LockRetryDelay returns the wait between two attempts on a locked resource.
func (c *Config) LockRetryDelay() time.Duration {
	return time.Duration(c.Transfer.LockRetrySeconds) * time.Second
}

// InitializeConfig loads the configuration with hierarchical precedence:
// defaults, then the config file, then BUDGEA_* environment variables.
func InitializeConfig(configFile string) (*Config, error) {
	return InitializeConfigWithFlags(configFile, nil)
}

// InitializeConfigWithFlags is InitializeConfig with the persistent command
// line flags taking precedence over every other source.
func InitializeConfigWithFlags(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.budgea-salary")
		v.AddConfigPath(".budgea-salary")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file; only an explicit file is mandatory
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The Gemini key keeps its conventional unprefixed name
	if err := v.BindEnv("ocr.api_key", "GEMINI_API_KEY", EnvPrefix+"_OCR_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY environment variable: %w", err)
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.File = v.ConfigFileUsed()
	return &config, nil
}

// flagKeys maps persistent flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"username":   "api.username",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// API defaults
	v.SetDefault("api.base_url", "https://budgeapro.biapi.pro/2.0")
	v.SetDefault("api.username", "")
	v.SetDefault("api.application", "Android")
	v.SetDefault("api.scope", "transfer")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("api.requests_per_second", 5.0)

	// Transfer defaults
	v.SetDefault("transfer.allowed_categories", []string{"Salariés", "Stagiaires"})
	v.SetDefault("transfer.new_recipient_category", "Salariés")
	v.SetDefault("transfer.label_prefix", "Salaire")
	v.SetDefault("transfer.lock_retry_seconds", 5)
	v.SetDefault("transfer.lock_max_attempts", 0)
	v.SetDefault("transfer.poll_attempts", 12)
	v.SetDefault("transfer.confirm_each", false)

	// Document defaults
	v.SetDefault("pdf.converter", ConverterPdfcpu)
	v.SetDefault("pdf.text_extractor", ExtractorPDF)

	// OCR defaults
	v.SetDefault("ocr.provider", OCRProviderAPI)
	v.SetDefault("ocr.model", "gemini-1.5-flash")
	v.SetDefault("ocr.api_key", "")

	// Report defaults
	v.SetDefault("report.format", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate API configuration
	u, err := url.Parse(config.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got: %q", config.API.BaseURL)
	}
	if config.API.Application == "" {
		return fmt.Errorf("api.application cannot be empty")
	}
	if config.API.TimeoutSeconds < 1 || config.API.TimeoutSeconds > 300 {
		return fmt.Errorf("api.timeout_seconds must be between 1 and 300, got: %d", config.API.TimeoutSeconds)
	}
	if config.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second cannot be negative, got: %g", config.API.RequestsPerSecond)
	}

	// Validate transfer configuration
	if len(config.Transfer.AllowedCategories) == 0 {
		return fmt.Errorf("transfer.allowed_categories cannot be empty")
	}
	if !contains(config.Transfer.AllowedCategories, config.Transfer.NewRecipientCategory) {
		return fmt.Errorf("transfer.new_recipient_category %q is not an allowed category", config.Transfer.NewRecipientCategory)
	}
	if config.Transfer.LockRetrySeconds < 0 {
		return fmt.Errorf("transfer.lock_retry_seconds cannot be negative, got: %d", config.Transfer.LockRetrySeconds)
	}
	if config.Transfer.LockMaxAttempts < 0 {
		return fmt.Errorf("transfer.lock_max_attempts cannot be negative, got: %d", config.Transfer.LockMaxAttempts)
	}
	if config.Transfer.PollAttempts < 1 {
		return fmt.Errorf("transfer.poll_attempts must be at least 1, got: %d", config.Transfer.PollAttempts)
	}

	// Validate document backends
	switch config.PDF.Converter {
	case ConverterPdfcpu, ConverterMutool, ConverterNone:
	default:
		return fmt.Errorf("invalid pdf.converter: %s", config.PDF.Converter)
	}
	switch config.PDF.TextExtractor {
	case ExtractorPDF, ExtractorPdftotext, ExtractorRaw:
	default:
		return fmt.Errorf("invalid pdf.text_extractor: %s", config.PDF.TextExtractor)
	}

	// Validate OCR configuration
	switch config.OCR.Provider {
	case OCRProviderAPI, OCRProviderNone:
	case OCRProviderGemini:
		if config.OCR.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when ocr.provider is gemini")
		}
	default:
		return fmt.Errorf("invalid ocr.provider: %s", config.OCR.Provider)
	}

	// Validate report format
	if config.Report.Format != "" {
		if err := validation.IsValidReportFormat(config.Report.Format); err != nil {
			return fmt.Errorf("invalid report.format: %w", err)
		}
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
