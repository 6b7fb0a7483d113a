// Package extract handles the offline payslip extraction command
package extract

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/budgea-salary/cmd/common"
	"fjacquet/budgea-salary/cmd/root"
	"fjacquet/budgea-salary/internal/config"
	"fjacquet/budgea-salary/internal/container"
	"fjacquet/budgea-salary/internal/fileutils"
	"fjacquet/budgea-salary/internal/models"
	"fjacquet/budgea-salary/internal/parsererror"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Options are the flags of the extract command.
type Options struct {
	OCR bool
}

var flags Options

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Show the fields extracted from payslips",
	Long: `Print the name, net salary, IBAN and pay period read from each payslip
without transferring anything. With --ocr, documents without a usable text
layer are sent to the configured OCR provider.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(cmd.Context(), c, args, flags)
	},
}

func init() {
	Cmd.Flags().BoolVar(&flags.OCR, "ocr", false, "recognize documents without a text layer")
}

// Run extracts every document of args and renders the result table.
func Run(ctx context.Context, c *container.Container, args []string, opts Options) error {
	files, err := fileutils.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF document found in %s", strings.Join(args, ", "))
	}

	sess := models.Session{RunID: uuid.NewString()}
	withOCR := opts.OCR && c.GetRecognizer() != nil
	if opts.OCR && c.GetRecognizer() == nil {
		c.GetConsole().Warn("OCR is disabled in the configuration, ignoring --ocr")
	}
	if withOCR && c.GetConfig().OCR.Provider == config.OCRProviderAPI {
		if sess, err = common.Login(ctx, c); err != nil {
			return err
		}
	}

	orch := c.NewOrchestrator(withOCR)
	cons := c.GetConsole()
	employees := make([]models.Employee, 0, len(files))
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		e, err := orch.Extract(ctx, sess, file)
		if err != nil {
			if !parsererror.IsSkip(err) {
				return err
			}
			cons.Notify(models.Notice{Level: models.NoticeWarning, File: file, Message: err.Error()})
		}
		e.Source = file
		employees = append(employees, e)
	}

	cons.Extractions(employees)
	return ctx.Err()
}
