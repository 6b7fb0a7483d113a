package console

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"fjacquet/budgea-salary/internal/models"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newConsole(input string) (*Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return New(strings.NewReader(input), out), out
}

func TestConsole_Confirm(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"oui\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, out := newConsole(tt.input)
			ok, err := c.Confirm("Do you want to execute transfers?")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.Equal(t, "Do you want to execute transfers? (y/N) ", out.String())
		})
	}
}

func TestConsole_Ask(t *testing.T) {
	c, out := newConsole("  123456 \nsecond")

	v, err := c.Ask("Code SMS")
	require.NoError(t, err)
	assert.Equal(t, "123456", v)
	assert.Equal(t, "Code SMS: ", out.String())

	v, err = c.Ask("Other")
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	_, err = c.Ask("Exhausted")
	assert.Error(t, err)
}

func TestConsole_PasswordWithoutTerminal(t *testing.T) {
	c, out := newConsole("s3cret\n")

	pw, err := c.Password("payroll@example.com")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.Contains(t, out.String(), "payroll@example.com")
}

func TestConsole_Notify(t *testing.T) {
	c, out := newConsole("")

	c.Notify(models.Notice{Level: models.NoticeError, File: "march.pdf", Message: "unable to find recipient"})
	c.Notify(models.Notice{Level: models.NoticeSuccess, Message: "done! (pending)"})

	assert.Equal(t, "march.pdf: unable to find recipient\ndone! (pending)\n", out.String())
}

func TestSelectAccount(t *testing.T) {
	accounts := []models.Account{{ID: 12, Name: "Pro"}, {ID: 40, Name: "Paie"}}

	a, err := SelectAccount(accounts, " 40 ")
	require.NoError(t, err)
	assert.Equal(t, "Paie", a.Name)

	_, err = SelectAccount(accounts, "7")
	assert.EqualError(t, err, "7 is not a valid account")

	_, err = SelectAccount(accounts, "abc")
	assert.Error(t, err)
}

func TestConsole_ChooseAccount(t *testing.T) {
	c, out := newConsole("12\n")
	accounts := []models.Account{{ID: 12, Name: "Compte pro", FormattedBalance: "1 520,50 €"}}

	a, err := c.ChooseAccount(accounts)
	require.NoError(t, err)
	assert.Equal(t, int64(12), a.ID)
	assert.Contains(t, out.String(), "Compte pro")
	assert.Contains(t, out.String(), "1 520,50 €")
}

func TestConsole_Summarize(t *testing.T) {
	c, out := newConsole("")
	c.Summarize([]models.Employee{{
		Name:   "Jane Doe",
		IBAN:   "FR7630006000011234567890189",
		Salary: decimal.NewNullDecimal(decimal.RequireFromString("1234.56")),
	}})

	s := out.String()
	assert.Contains(t, s, "EMPLOYEE")
	assert.Contains(t, s, "RECIPIENT")
	assert.Contains(t, s, "Jane Doe")
	assert.Contains(t, s, "FR76 3000 6000 0112 3456 7890 189")
	assert.Contains(t, s, "€")
}

func TestConsole_SummarizeShowsMatchedRecipient(t *testing.T) {
	c, out := newConsole("")
	c.Summarize([]models.Employee{{
		Name:      "Jean Martin",
		Salary:    decimal.NewNullDecimal(decimal.RequireFromString("10")),
		Recipient: &models.Recipient{ID: 9, Label: "MARTINEZ Paul", IBAN: "FR7630006000011234567890189"},
	}})

	var row string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "Jean Martin") {
			row = line
		}
	}
	require.NotEmpty(t, row)
	assert.Contains(t, row, "MARTINEZ Paul (#9)")
	assert.Contains(t, row, "FR76 3000 6000 0112 3456 7890 189")
}

func TestConsole_TablesDoNotWrapIBAN(t *testing.T) {
	iban := "FR7630006000011234567890189"
	grouped := "FR76 3000 6000 0112 3456 7890 189"
	c, out := newConsole("")
	c.Extractions([]models.Employee{{Source: "a.pdf", Name: "Jane Doe", IBAN: iban}})
	c.Recipients([]models.Recipient{{ID: 3, Label: "DOE Jane", IBAN: iban}})

	assert.Equal(t, 2, strings.Count(out.String(), grouped))
}

func TestConsole_Extractions(t *testing.T) {
	c, out := newConsole("")
	c.Extractions([]models.Employee{
		{Source: "a.pdf", Name: "Jane Doe", Salary: decimal.NewNullDecimal(decimal.RequireFromString("10"))},
		{Source: "b.pdf", OCR: true},
	})

	s := out.String()
	assert.Contains(t, s, "b.pdf (OCRized)")
	assert.Contains(t, s, "yes")
	assert.Contains(t, s, "no")
}

func TestConsole_RecipientsAndResults(t *testing.T) {
	c, out := newConsole("")
	c.Recipients([]models.Recipient{{ID: 3, Label: "Jane Doe", Category: models.CategorySalaried, BankName: "SG"}})
	c.Results([]models.TransferResult{{File: "a.pdf", Employee: "Jane Doe", Status: models.StatusDone, State: "done"}})

	s := out.String()
	assert.Contains(t, s, "Salariés")
	assert.Contains(t, s, "a.pdf")
	assert.Contains(t, s, models.StatusDone)
}
