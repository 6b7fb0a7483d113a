// Package root contains the root command for the application
package root

import (
	"sync"

	"fjacquet/budgea-salary/internal/config"
	"fjacquet/budgea-salary/internal/container"
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/validation"

	"github.com/spf13/cobra"
)

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "budgea-salary",
		Short: "Pay salaries from payslip PDFs through the Budgea banking API.",
		Long: `budgea-salary reads payslip PDFs, extracts the employee name, net salary,
IBAN and pay period, matches each employee to a recipient of a bank account
and submits the salary transfers after a single confirmation.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initialize,
	}

	// ConfigFile is an explicit configuration file, overriding the search path.
	ConfigFile string
	// LogLevel and LogFormat override the configured logging.
	LogLevel  string
	LogFormat string

	// AppConfig is the configuration loaded for the running command.
	AppConfig *config.Config
	// AppContainer holds the dependencies of the running command.
	AppContainer *container.Container

	// ContainerOptions are applied when the container is built.
	ContainerOptions []container.Option

	initOnce sync.Once
	mu       sync.Mutex
)

// Init initializes the root command and all flags
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "config file (default $HOME/.budgea-salary/config.yaml)")
		Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "log level (debug, info, warn, error)")
		Cmd.PersistentFlags().StringVar(&LogFormat, "log-format", "", "log format (text or json)")
	})
}

func initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.InitializeConfigWithFlags(ConfigFile, cmd.Flags())
	if err != nil {
		return err
	}

	c, err := container.NewContainer(cmd.Context(), cfg, ContainerOptions...)
	if err != nil {
		return err
	}

	for _, f := range []string{cfg.File, ".env"} {
		if f == "" {
			continue
		}
		if err := validation.CheckSecretFile(f); err != nil {
			c.GetLogger().WithError(err).Warn("Credentials file is readable by other users",
				logging.F(logging.FieldFile, f))
		}
	}

	mu.Lock()
	defer mu.Unlock()
	AppConfig = cfg
	AppContainer = c
	return nil
}

// GetContainer returns the container of the running command, or nil before
// initialization.
func GetContainer() *container.Container {
	mu.Lock()
	defer mu.Unlock()
	return AppContainer
}

// GetConfig returns the configuration of the running command.
func GetConfig() *config.Config {
	mu.Lock()
	defer mu.Unlock()
	return AppConfig
}

// GetLogger returns the configured logger, or a default one before
// initialization.
func GetLogger() logging.Logger {
	if c := GetContainer(); c != nil {
		return c.GetLogger()
	}
	return logging.NewLogrusAdapter("info", "text", nil)
}

// Close releases the container. It is safe to call on every exit path,
// including from a signal handler.
func Close() error {
	c := GetContainer()
	if c == nil {
		return nil
	}
	return c.Close()
}
