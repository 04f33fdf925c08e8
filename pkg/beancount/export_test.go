package beancount

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
	"github.com/shunichi-ikebuchi/pocketr/pkg/pathutil"
)

func groceryRun(id, day string) ledger.PostedTransaction {
	return ledger.PostedTransaction{
		ID:          id,
		TxnDate:     date.MustParse(day),
		Currency:    "EUR",
		Description: `Weekly "big" shop`,
		Kind:        ledger.KindExpense,
		Splits: []ledger.PostedSplit{
			{AccountName: "groceries", AccountType: ledger.Expense, Side: ledger.Debit, AmountMinor: 4250, CategoryTagName: "Food & Drink"},
			{AccountName: "Main checking", AccountType: ledger.Asset, Side: ledger.Credit, AmountMinor: 4250},
		},
	}
}

func TestAccountName(t *testing.T) {
	tests := []struct {
		typ      ledger.AccountType
		name     string
		currency string
		want     string
	}{
		{ledger.Asset, "Main checking", "EUR", "Assets:MainChecking:EUR"},
		{ledger.Liability, "credit-card", "GBP", "Liabilities:Credit-card:GBP"},
		{ledger.Equity, ledger.OpeningEquityName, "USD", "Equity:OpeningEquity:USD"},
		{ledger.Income, "salary (acme)", "eur", "Income:SalaryAcme:EUR"},
		{ledger.Expense, "2nd car", "CHF", "Expenses:X2ndCar:CHF"},
		{ledger.Expense, "???", "JPY", "Expenses:Unnamed:JPY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AccountName(tt.typ, tt.name, tt.currency))
		})
	}
}

func TestTag(t *testing.T) {
	assert.Equal(t, "food-drink", Tag("Food & Drink"))
	assert.Equal(t, "travel", Tag(" Travel "))
	assert.Equal(t, "", Tag(""))
}

func TestConvertAndFormat(t *testing.T) {
	entry := Convert(groceryRun("t-1", "2026-02-03"), 2)

	require.Len(t, entry.Postings, 2)
	assert.Equal(t, "42.50", entry.Postings[0].Amount)
	assert.Equal(t, "-42.50", entry.Postings[1].Amount)
	assert.Equal(t, []string{"food-drink"}, entry.Tags)

	text := Format(entry)
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `2026-02-03 * "Weekly \"big\" shop" #food-drink`, lines[0])
	assert.Equal(t, `  txn-id: "t-1"`, lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  Expenses:Groceries:EUR "))
	assert.True(t, strings.HasSuffix(lines[2], " 42.50 EUR"))
	assert.True(t, strings.HasSuffix(lines[3], " -42.50 EUR"))
}

func newTestExporter(t *testing.T) (*Exporter, *FileSystemRepository, *pathutil.PathResolver) {
	t.Helper()
	paths := pathutil.New(pathutil.Config{ExportDir: t.TempDir()})
	repo := NewFileSystemRepository(paths)
	repo.now = func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }
	return NewExporter(repo, nil), repo, paths
}

func TestExportWritesMonthFilesOnce(t *testing.T) {
	exporter, repo, paths := newTestExporter(t)
	txns := []ledger.PostedTransaction{
		groceryRun("t-2", "2026-02-10"),
		groceryRun("t-1", "2026-01-31"),
	}
	exponents := map[string]int{"EUR": 2}

	result, err := exporter.Export(txns, exponents, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Written)
	assert.Equal(t, []string{"2026-01", "2026-02"}, result.Months)
	assert.Equal(t, 2, result.Accounts)

	january, err := repo.ReadMonthFile(date.NewMonth(2026, time.January))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(january, "; Beancount file for 2026-01\n"))
	assert.Contains(t, january, `txn-id: "t-1"`)
	assert.NotContains(t, january, `txn-id: "t-2"`)

	files, err := repo.GetMonthFilesInYear(2026)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01", "2026-02"}, files)

	accounts, err := os.ReadFile(filepath.Join(paths.GetExportDir(), AccountsFile))
	require.NoError(t, err)
	assert.Contains(t, string(accounts), "2026-01-31 open Assets:MainChecking:EUR EUR\n")
	assert.Contains(t, string(accounts), "2026-01-31 open Expenses:Groceries:EUR EUR\n")

	again, err := exporter.Export(txns, exponents, false)
	require.NoError(t, err)
	assert.Zero(t, again.Written)
	assert.Equal(t, 2, again.Skipped)
	assert.Zero(t, again.Accounts)

	after, err := repo.ReadMonthFile(date.NewMonth(2026, time.January))
	require.NoError(t, err)
	assert.Equal(t, january, after)
}

func TestExportDryRunWritesNothing(t *testing.T) {
	exporter, repo, paths := newTestExporter(t)

	result, err := exporter.Export([]ledger.PostedTransaction{groceryRun("t-1", "2026-01-31")}, map[string]int{"EUR": 2}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written)
	assert.False(t, repo.MonthFileExists(date.NewMonth(2026, time.January)))
	assert.False(t, paths.FileExists(filepath.Join(paths.GetExportDir(), AccountsFile)))
}

func TestExportUnknownCurrency(t *testing.T) {
	exporter, _, _ := newTestExporter(t)

	_, err := exporter.Export([]ledger.PostedTransaction{groceryRun("t-1", "2026-01-31")}, map[string]int{}, false)
	assert.Error(t, err)
}

func openingBalance(id, day, currency string, minor int64) ledger.PostedTransaction {
	return ledger.PostedTransaction{
		ID:          id,
		TxnDate:     date.MustParse(day),
		Currency:    currency,
		Description: "Opening balance - Checking",
		Kind:        ledger.KindTransfer,
		Splits: []ledger.PostedSplit{
			{AccountName: "Checking", AccountType: ledger.Asset, Side: ledger.Debit, AmountMinor: minor},
			{AccountName: ledger.OpeningEquityName, AccountType: ledger.Equity, Side: ledger.Credit, AmountMinor: minor},
		},
	}
}

func TestExportKeepsCurrenciesApart(t *testing.T) {
	exporter, _, paths := newTestExporter(t)
	txns := []ledger.PostedTransaction{
		openingBalance("t-eur", "2026-01-02", "EUR", 10000),
		openingBalance("t-usd", "2026-01-03", "USD", 2500),
	}

	result, err := exporter.Export(txns, map[string]int{"EUR": 2, "USD": 2}, false)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Accounts)

	accounts, err := os.ReadFile(filepath.Join(paths.GetExportDir(), AccountsFile))
	require.NoError(t, err)
	assert.Equal(t, "; Accounts referenced by exported transactions\n\n"+
		"2026-01-02 open Assets:Checking:EUR EUR\n"+
		"2026-01-03 open Assets:Checking:USD USD\n"+
		"2026-01-02 open Equity:OpeningEquity:EUR EUR\n"+
		"2026-01-03 open Equity:OpeningEquity:USD USD\n", string(accounts))
}
