package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/pocketr/pkg/amount"
	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

var (
	txnCurrency  string
	txnDate      string
	txnDesc      string
	txnSplits    []string
	txnHousehold string

	listFrom     string
	listTo       string
	listAccount  string
	listCategory string
	listPage     int
	listSize     int
)

var txnCmd = &cobra.Command{
	Use:   "txn",
	Short: "Post and list transactions",
}

var txnPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a balanced transaction",
	Long: `Post a balanced transaction. Each --split is ACCOUNT_ID:SIDE:AMOUNT
with an optional :CATEGORY_ID suffix. SIDE is DEBIT or CREDIT and AMOUNT is
in major units of the transaction currency.

Example:
  pocketr txn post --date 2026-02-01 --desc "Weekly shop" \
      --split <groceries-id>:DEBIT:42.50:<food-tag-id> \
      --split <checking-id>:CREDIT:42.50`,
	Args: cobra.NoArgs,
	Run:  runTxnPost,
}

var txnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	Args:  cobra.NoArgs,
	Run:   runTxnList,
}

func init() {
	txnPostCmd.Flags().StringVar(&txnCurrency, "currency", "EUR", "Transaction currency")
	txnPostCmd.Flags().StringVar(&txnDate, "date", "", "Transaction date (YYYY-MM-DD, default today)")
	txnPostCmd.Flags().StringVar(&txnDesc, "desc", "", "Description (required)")
	txnPostCmd.Flags().StringArrayVar(&txnSplits, "split", nil, "ACCOUNT_ID:SIDE:AMOUNT[:CATEGORY_ID] (repeatable)")
	txnPostCmd.Flags().StringVar(&txnHousehold, "household", "", "Post in household mode for this household ID")
	txnPostCmd.MarkFlagRequired("desc")

	txnListCmd.Flags().StringVar(&listFrom, "from", "", "Start date (YYYY-MM-DD)")
	txnListCmd.Flags().StringVar(&listTo, "to", "", "End date (YYYY-MM-DD)")
	txnListCmd.Flags().StringVar(&listAccount, "account", "", "Only transactions touching this account")
	txnListCmd.Flags().StringVar(&listCategory, "category", "", "Only transactions with this category")
	txnListCmd.Flags().IntVar(&listPage, "page", 0, "Zero-based page number")
	txnListCmd.Flags().IntVar(&listSize, "size", ledger.DefaultPageSize, "Page size")
	txnListCmd.Flags().StringVar(&txnHousehold, "household", "", "List household transactions for this household ID")

	txnCmd.AddCommand(txnPostCmd)
	txnCmd.AddCommand(txnListCmd)
}

// parseSplit parses ACCOUNT_ID:SIDE:AMOUNT[:CATEGORY_ID].
func parseSplit(raw string, exponent int) (ledger.SplitInput, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return ledger.SplitInput{}, fmt.Errorf("invalid split %q: expected ACCOUNT_ID:SIDE:AMOUNT[:CATEGORY_ID]", raw)
	}

	side := ledger.Side(strings.ToUpper(strings.TrimSpace(parts[1])))
	if !side.Valid() {
		return ledger.SplitInput{}, fmt.Errorf("invalid split %q: side must be DEBIT or CREDIT", raw)
	}

	minor, err := amount.Parse(parts[2], exponent)
	if err != nil {
		return ledger.SplitInput{}, fmt.Errorf("invalid split %q: %w", raw, err)
	}

	split := ledger.SplitInput{
		AccountID:   strings.TrimSpace(parts[0]),
		Side:        side,
		AmountMinor: minor,
	}
	if len(parts) == 4 {
		split.CategoryTagID = strings.TrimSpace(parts[3])
	}
	return split, nil
}

// optionalDate parses s, or returns the zero Date for "".
func optionalDate(s, name string) date.Date {
	if s == "" {
		return date.Date{}
	}
	d, err := date.Parse(s)
	exitOnError(err, "invalid "+name)
	return d
}

func runTxnPost(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	currency, err := a.ledger.Currency(a.ctx, txnCurrency)
	exitOnError(err, "invalid currency")

	splits := make([]ledger.SplitInput, 0, len(txnSplits))
	for _, raw := range txnSplits {
		split, err := parseSplit(raw, currency.MinorUnit)
		exitOnError(err, "invalid split")
		splits = append(splits, split)
	}

	day := optionalDate(txnDate, "date")
	if day.IsZero() {
		day = date.Today()
	}

	posted, err := a.ledger.Post(a.ctx, actorID, ledger.PostRequest{
		Currency:    currency.Code,
		TxnDate:     day,
		Description: txnDesc,
		Mode:        modeFor(txnHousehold),
		HouseholdID: txnHousehold,
		Splits:      splits,
	})
	exitOnError(err, "failed to post transaction")

	printTransaction(*posted, map[string]int{currency.Code: currency.MinorUnit})
}

func runTxnList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	page, err := a.ledger.ListTransactions(a.ctx, actorID, ledger.TransactionQuery{
		Mode:        modeFor(txnHousehold),
		HouseholdID: txnHousehold,
		From:        optionalDate(listFrom, "from date"),
		To:          optionalDate(listTo, "to date"),
		AccountID:   listAccount,
		CategoryID:  listCategory,
		Page:        listPage,
		Size:        listSize,
	})
	exitOnError(err, "failed to list transactions")

	exponents := a.exponents()
	for _, txn := range page.Items {
		printTransaction(txn, exponents)
	}
	fmt.Printf("Page %d of %d (%d transactions)\n", page.Page+1, max(page.TotalPages, 1), page.Total)
}

func printTransaction(txn ledger.PostedTransaction, exponents map[string]int) {
	fmt.Printf("%s  %s  %-8s %s\n", txn.TxnDate, txn.ID, txn.Kind, txn.Description)
	for _, s := range txn.Splits {
		category := ""
		if s.CategoryTagName != "" {
			category = "#" + s.CategoryTagName
		}
		fmt.Printf("    %-6s %-30s %16s %s\n",
			s.Side,
			s.AccountName,
			amount.Format(s.EffectMinor, txn.Currency, exponents[txn.Currency]),
			category,
		)
	}
}
