package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
)

var (
	asOf            string
	reportHousehold string
	seriesFrom      string
	seriesTo        string
	reportMonth     string
)

var balanceCmd = &cobra.Command{
	Use:   "balance ACCOUNT_ID...",
	Short: "Show account balances as of a date",
	Args:  cobra.MinimumNArgs(1),
	Run:   runBalance,
}

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries ACCOUNT_ID",
	Short: "Show the daily closing balance of an account",
	Args:  cobra.ExactArgs(1),
	Run:   runTimeseries,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregated reports",
}

var reportExpensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Net expenses of a month by account and category",
	Args:  cobra.NoArgs,
	Run:   runReportExpenses,
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Balances of all own accounts",
	Args:  cobra.NoArgs,
	Run:   runReportSummary,
}

func init() {
	balanceCmd.Flags().StringVar(&asOf, "as-of", "", "Balance date (YYYY-MM-DD, default today)")
	balanceCmd.Flags().StringVar(&reportHousehold, "household", "", "Read shared accounts of this household")

	timeseriesCmd.Flags().StringVar(&seriesFrom, "from", "", "Start date (YYYY-MM-DD) (required)")
	timeseriesCmd.Flags().StringVar(&seriesTo, "to", "", "End date (YYYY-MM-DD) (required)")
	timeseriesCmd.Flags().StringVar(&reportHousehold, "household", "", "Read a shared account of this household")
	timeseriesCmd.MarkFlagRequired("from")
	timeseriesCmd.MarkFlagRequired("to")

	reportExpensesCmd.Flags().StringVar(&reportMonth, "month", "", "Month (YYYY-MM) (required)")
	reportExpensesCmd.Flags().StringVar(&reportHousehold, "household", "", "Report household expenses")
	reportExpensesCmd.MarkFlagRequired("month")

	reportSummaryCmd.Flags().StringVar(&asOf, "as-of", "", "Balance date (YYYY-MM-DD, default today)")

	reportCmd.AddCommand(reportExpensesCmd)
	reportCmd.AddCommand(reportSummaryCmd)
}

func balanceDate() date.Date {
	if d := optionalDate(asOf, "as-of date"); !d.IsZero() {
		return d
	}
	return date.Today()
}

func runBalance(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	balances, err := a.ledger.Balances(a.ctx, actorID, args, balanceDate(), reportHousehold)
	exitOnError(err, "failed to get balances")

	exponents := a.exponents()
	for _, b := range balances {
		fmt.Printf("%s  %-9s %-30s %16s\n", b.AsOf, b.AccountType, b.AccountName, a.format(b.BalanceMinor, b.Currency, exponents))
	}
}

func runTimeseries(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	series, err := a.ledger.BalanceTimeseries(a.ctx, actorID, args[0],
		optionalDate(seriesFrom, "from date"), optionalDate(seriesTo, "to date"), reportHousehold)
	exitOnError(err, "failed to get balance timeseries")

	exponents := a.exponents()
	fmt.Printf("%s (%s, %s)\n", series.AccountName, series.AccountType, series.Currency)
	for _, p := range series.Points {
		fmt.Printf("%s %16s\n", p.Date, a.format(p.BalanceMinor, series.Currency, exponents))
	}
}

func runReportExpenses(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	month, err := date.ParseMonth(reportMonth)
	exitOnError(err, "invalid month")

	expenses, err := a.ledger.MonthlyExpenses(a.ctx, actorID, month, modeFor(reportHousehold), reportHousehold)
	exitOnError(err, "failed to get monthly expenses")

	if len(expenses) == 0 {
		fmt.Printf("No expenses in %s\n", month)
		return
	}

	exponents := a.exponents()
	for _, e := range expenses {
		category := e.CategoryTagName
		if e.CategoryTagID == "" {
			category = "(uncategorized)"
		}
		fmt.Printf("%-30s %-20s %16s\n", e.ExpenseAccountName, category, a.format(e.NetMinor, e.Currency, exponents))
	}
}

func runReportSummary(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	balances, err := a.ledger.BalanceSummary(a.ctx, actorID, balanceDate())
	exitOnError(err, "failed to get balance summary")

	exponents := a.exponents()
	for _, b := range balances {
		fmt.Printf("%-9s %-30s %16s\n", b.AccountType, b.AccountName, a.format(b.BalanceMinor, b.Currency, exponents))
	}
}
