// Package console implements the operator side of a run: prompts, password
// entry, colored progress messages and summary tables.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fjacquet/budgea-salary/internal/currencyutils"
	"fjacquet/budgea-salary/internal/models"
	"fjacquet/budgea-salary/internal/payslip"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
)

// Console talks to the operator through a reader and a writer.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	// fd is the terminal used for password entry, or -1.
	fd int
}

// New creates a console over arbitrary streams. Passwords are read as plain
// lines.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out, fd: -1}
}

// NewStdio creates a console over the process standard streams.
func NewStdio() *Console {
	c := New(os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		c.fd = fd
	}
	return c
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask prints a label and returns the operator's answer.
func (c *Console) Ask(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	return c.readLine()
}

// Confirm asks a yes/no question; anything but y or yes is a no.
func (c *Console) Confirm(question string) (bool, error) {
	fmt.Fprintf(c.out, "%s (y/N) ", question)
	answer, err := c.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "o", "oui":
		return true, nil
	default:
		return false, nil
	}
}

// Password prompts for the password of username without echo when attached
// to a terminal.
func (c *Console) Password(username string) (string, error) {
	fmt.Fprintf(c.out, "Please enter password for account %s: ", blue(username))
	if c.fd < 0 {
		return c.readLine()
	}
	pw, err := term.ReadPassword(c.fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// Warn prints a highlighted warning line.
func (c *Console) Warn(msg string) {
	fmt.Fprintln(c.out, yellow(msg))
}

// Notify prints a progress or failure message as soon as it happens.
func (c *Console) Notify(n models.Notice) {
	prefix := ""
	if n.File != "" {
		prefix = yellow(n.File) + ": "
	}
	switch n.Level {
	case models.NoticeSuccess:
		fmt.Fprintln(c.out, prefix+green(n.Message))
	case models.NoticeWarning:
		fmt.Fprintln(c.out, prefix+yellow(n.Message))
	case models.NoticeError:
		fmt.Fprintln(c.out, prefix+red(n.Message))
	default:
		fmt.Fprintln(c.out, prefix+n.Message)
	}
}

// ChooseAccount lists the accounts and asks which one to use. An answer
// that is not one of the listed ids is an error.
func (c *Console) ChooseAccount(accounts []models.Account) (models.Account, error) {
	fmt.Fprintln(c.out)
	for _, a := range accounts {
		fmt.Fprintf(c.out, "%s) %-60s %s\n", red(a.ID), yellow(a.Name), green(a.FormattedBalance))
	}
	answer, err := c.Ask("From which account do you want to do transfers?")
	if err != nil {
		return models.Account{}, err
	}
	return SelectAccount(accounts, answer)
}

// SelectAccount returns the account whose id is answer.
func SelectAccount(accounts []models.Account, answer string) (models.Account, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(answer), 10, 64)
	if err == nil {
		for _, a := range accounts {
			if a.ID == id {
				return a, nil
			}
		}
	}
	return models.Account{}, fmt.Errorf("%s is not a valid account", answer)
}

// Summarize renders the transfers about to be executed.
func (c *Console) Summarize(employees []models.Employee) {
	table := newTable(c.out)
	table.SetHeader([]string{"Employee", "Recipient", "IBAN", "Amount"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
	})
	for _, e := range employees {
		table.Append([]string{
			e.Name, yellow(recipientOf(e)),
			yellow(payslip.GroupIBAN(ibanOf(e))), green(amountOf(e)),
		})
	}
	table.Render()
}

// Extractions renders the fields extracted from each document.
func (c *Console) Extractions(employees []models.Employee) {
	table := newTable(c.out)
	table.SetHeader([]string{"File", "Name", "Salary", "IBAN", "Period", "Valid"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
	})
	for _, e := range employees {
		valid := green("yes")
		if !e.IsValid() {
			valid = red("no")
		}
		file := e.Source
		if e.OCR {
			file += " (OCRized)"
		}
		table.Append([]string{file, e.Name, amountOf(e), payslip.GroupIBAN(e.IBAN), e.Period, valid})
	}
	table.Render()
}

// Recipients renders a recipient list.
func (c *Console) Recipients(recipients []models.Recipient) {
	table := newTable(c.out)
	table.SetHeader([]string{"ID", "Label", "Category", "IBAN", "Bank"})
	for _, r := range recipients {
		table.Append([]string{
			strconv.FormatInt(r.ID, 10), r.Label, r.Category,
			payslip.GroupIBAN(r.IBAN), r.BankName,
		})
	}
	table.Render()
}

// Results renders the outcome of a run.
func (c *Console) Results(results []models.TransferResult) {
	table := newTable(c.out)
	table.SetHeader([]string{"File", "Employee", "Amount", "Status", "State", "Error"})
	for _, r := range results {
		status := r.Status
		switch r.Status {
		case models.StatusDone, models.StatusSubmitted:
			status = green(status)
		case models.StatusFailed, models.StatusSkipped:
			status = red(status)
		default:
			status = yellow(status)
		}
		table.Append([]string{r.File, r.Employee, r.Amount, status, r.State, r.Error})
	}
	table.Render()
}

// newTable keeps grouped IBANs on a single line.
func newTable(out io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	return table
}

func recipientOf(e models.Employee) string {
	if e.Recipient == nil {
		return ""
	}
	return fmt.Sprintf("%s (#%d)", e.Recipient.Label, e.Recipient.ID)
}

func ibanOf(e models.Employee) string {
	if e.HasIBAN() {
		return e.IBAN
	}
	if e.Recipient != nil {
		return e.Recipient.IBAN
	}
	return ""
}

func amountOf(e models.Employee) string {
	if !e.Salary.Valid {
		return ""
	}
	return currencyutils.FormatEUR(e.Salary.Decimal)
}
