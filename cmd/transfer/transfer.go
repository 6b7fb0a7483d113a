// Package transfer handles the salary transfer command
package transfer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/budgea-salary/cmd/common"
	"fjacquet/budgea-salary/cmd/root"
	"fjacquet/budgea-salary/internal/container"
	"fjacquet/budgea-salary/internal/fileutils"
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"
	"fjacquet/budgea-salary/internal/report"

	"github.com/spf13/cobra"
)

// Options are the flags of the transfer command.
type Options struct {
	Force        bool
	Report       string
	ReportFormat string
	Account      string
}

var flags Options

// Cmd represents the transfer command
var Cmd = &cobra.Command{
	Use:   "transfer FILE...",
	Short: "Pay the salaries of the given payslips",
	Long: `Read every payslip given as a file or a directory of PDFs, match each
employee to a recipient of the selected account and, after confirmation,
submit one transfer per employee. Transfers are left pending unless --force
is given.`,
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
	Cmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "validate transfers immediately")
	Cmd.Flags().StringVar(&flags.Report, "report", "", "write a report of the run to this file")
	Cmd.Flags().StringVar(&flags.ReportFormat, "report-format", "", "report format: csv, json, yaml or xlsx (default from the file extension)")
	Cmd.Flags().StringVar(&flags.Account, "account", "", "id of the account to pay from")
}

// Run executes a salary run over args. Documents that cannot be paid are
// reported and skipped; only a failure of the run itself is returned.
func Run(ctx context.Context, c *container.Container, args []string, opts Options) error {
	files, err := fileutils.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF document found in %s", strings.Join(args, ", "))
	}

	reportFormat := opts.ReportFormat
	if reportFormat == "" {
		reportFormat = c.GetConfig().Report.Format
	}
	if opts.Report != "" {
		if reportFormat, err = report.ResolveFormat(reportFormat, opts.Report); err != nil {
			return err
		}
	}

	cons := c.GetConsole()
	if opts.Force {
		cons.Warn("Warning: force mode is enabled, transfers will be validated without further notice!")
	}

	sess, err := common.Login(ctx, c)
	if err != nil {
		return err
	}
	sess, err = common.SelectAccount(ctx, c, sess, opts.Account)
	if err != nil {
		return err
	}
	sess.Force = opts.Force

	results, runErr := c.NewOrchestrator(true).Run(ctx, sess, files)
	if len(results) > 0 {
		cons.Results(results)
	}

	if opts.Report != "" {
		if err := c.GetReportGenerator().WriteFile(results, opts.Report, reportFormat); err != nil {
			if runErr == nil {
				runErr = err
			}
		}
	}

	c.GetLogger().Info("Run finished",
		logging.F(logging.FieldRunID, sess.RunID),
		logging.F(logging.FieldCount, len(files)),
		logging.F("skipped", count(results, models.StatusSkipped, models.StatusUnmatched)),
		logging.F("failed", count(results, models.StatusFailed)))
	return runErr
}

func count(results []models.TransferResult, statuses ...string) int {
	n := 0
	for _, r := range results {
		for _, s := range statuses {
			if r.Status == s {
				n++
				break
			}
		}
	}
	return n
}
