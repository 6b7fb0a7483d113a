package payslip

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const janeDoe = `SOCIETE EXEMPLE SAS
Bulletin de paie (March 2024)
(Madame Jane Doe)
IBAN : FR76 3000 6000 0112 3456 7890 189
Salaire de base 1 600,00
Net à payer : 1 234,56 euros
`

func TestExtract_JaneDoe(t *testing.T) {
	e := Extract(janeDoe)

	assert.Equal(t, "Jane Doe", e.Name)
	require.True(t, e.Salary.Valid)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(e.Salary.Decimal))
	assert.Equal(t, "FR7630006000011234567890189", e.IBAN)
	assert.Equal(t, "March 2024", e.Period)
	assert.True(t, e.IsValid())
}

func TestExtractSalary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"space thousands", "Net à payer : 1 234,56 euros", "1234.56"},
		{"surrounded by noise", "xx%%$ Cumul Net à payer : 1 234,56 euros ## 2 000,00", "1234.56"},
		{"no-break spaces", "Net\u00a0à\u00a0payer\u00a0: 2\u00a0100,00\u00a0euros", "2100"},
		{"accent lost in decoding", "Net  payer : 987,65 euros", "987.65"},
		{"dot thousands", "Net à payer : 1.234,56 euros", "1234.56"},
		{"dot decimal", "Net à payer : 1234.56 euros", "1234.56"},
		{"no decimals", "Net à payer : 1500 euros", "1500"},
		{"upper case", "NET A PAYER : 1 000,10 EUROS", "1000.10"},
		{"euro sign", "Net à payer : 800,00 €", "800"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			salary := ExtractSalary(tt.text)
			require.True(t, salary.Valid)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(salary.Decimal),
				"expected %s, got %s", tt.expected, salary.Decimal)
		})
	}
}

func TestExtractSalary_Absent(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no phrase", "Salaire brut : 1 234,56 euros"},
		{"no amount", "Net à payer : euros"},
		{"unparseable amount", "Net à payer : 1,234,56 euros"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, ExtractSalary(tt.text).Valid)
		})
	}
}

func TestExtractIBAN(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"grouped", "IBAN FR76 3000 6000 0112 3456 7890 189 BIC SOGEFRPP", "FR7630006000011234567890189"},
		{"compact", "iban:FR7630006000011234567890189", "FR7630006000011234567890189"},
		{"followed by BIC", "IBAN:FR7630006000011234567890189BIC", "FR7630006000011234567890189"},
		{"lower case", "fr76 3000 6000 0112 3456 7890 189", "FR7630006000011234567890189"},
		{"no-break spaces", "FR14\u00a02004\u00a01010\u00a00505\u00a00001\u00a03M02\u00a0606", "FR1420041010050500013M02606"},
		{"absent", "no bank details", ""},
		{"too short", "FR76 3000 6000 0112", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iban := ExtractIBAN(tt.text)
			assert.Equal(t, tt.expected, iban)
			if tt.expected != "" {
				assert.Len(t, iban, IBANLength)
				assert.Equal(t, "FR", iban[:2])
			}
		})
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"closing parenthesis", "(Madame Jane Doe)", "Jane Doe"},
		{"line break", "Monsieur Jean Dupont\r\nService RH", "Jean Dupont"},
		{"mademoiselle", "Mademoiselle Alice Martin)", "Alice Martin"},
		{"upper case civility", "MONSIEUR PAUL DURAND\n", "PAUL DURAND"},
		{"trailing spaces", "(Monsieur Luc Petit   )", "Luc Petit"},
		{"no civility", "Jane Doe", ""},
		{"civility only", "Madame\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractName(tt.text))
		})
	}
}

func TestExtractPeriod(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"english", "Period (March 2024)", "March 2024"},
		{"french", "Période : février 2023", "février 2023"},
		{"french no accent", "AOUT 2022", "AOUT 2022"},
		{"upper case", "DECEMBRE 2021", "DECEMBRE 2021"},
		{"wrong century", "March 1999", ""},
		{"not a month", "Marseille 2024", ""},
		{"absent", "nothing here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPeriod(tt.text))
		})
	}
}

func TestExtract_NameWithoutSalaryIsInvalid(t *testing.T) {
	e := Extract("(Madame Jane Doe)\nFR76 3000 6000 0112 3456 7890 189")

	assert.Equal(t, "Jane Doe", e.Name)
	assert.False(t, e.Salary.Valid)
	assert.False(t, e.IsValid())
}

func TestExtract_GarbledInput(t *testing.T) {
	assert.NotPanics(t, func() {
		e := Extract("\x00\x01%PDF-1.4 ÿþ Net à payer : ,,, euros Madame")
		assert.False(t, e.IsValid())
	})
}

func TestExtract_InvalidUTF8(t *testing.T) {
	raw := "stream\xff\xfe\x00garbage\n(Madame Jane Doe)\nNet \xe0 payer : 1 234,56 euros\nFR76 3000 6000 0112 3456 7890 189\n"

	e := Extract(raw)

	assert.Equal(t, "Jane Doe", e.Name)
	require.True(t, e.Salary.Valid)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(e.Salary.Decimal))
	assert.Equal(t, "FR7630006000011234567890189", e.IBAN)
}

func TestExtract_SameAmountWithOrWithoutAccent(t *testing.T) {
	fromText := Extract("Madame Jane Doe\nNet à payer : 12 345,67 euros\n")
	fromLatin1 := Extract("Madame Jane Doe\nNet \xe0 payer : 12 345,67 euros\n")

	require.True(t, fromText.Salary.Valid)
	require.True(t, fromLatin1.Salary.Valid)
	assert.True(t, fromText.Salary.Decimal.Equal(fromLatin1.Salary.Decimal))
}
