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
	accountName        string
	accountType        string
	accountCurrency    string
	accountOpening     string
	accountOpeningDate string
	accountHousehold   string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open an account",
	Long: `Open an account. ASSET accounts may carry an opening balance,
which is posted against the owner's Opening Equity account.

Example:
  pocketr account create --name Checking --type ASSET --currency EUR --opening 1500.00 --opening-date 2026-01-01`,
	Args: cobra.NoArgs,
	Run:  runAccountCreate,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List own accounts, plus shared ones with --household",
	Args:  cobra.NoArgs,
	Run:   runAccountList,
}

var accountRenameCmd = &cobra.Command{
	Use:   "rename ACCOUNT_ID NAME",
	Short: "Rename an account",
	Args:  cobra.ExactArgs(2),
	Run:   runAccountRename,
}

func init() {
	accountCreateCmd.Flags().StringVar(&accountName, "name", "", "Account name (required)")
	accountCreateCmd.Flags().StringVar(&accountType, "type", "", "ASSET, LIABILITY, INCOME or EXPENSE (required)")
	accountCreateCmd.Flags().StringVar(&accountCurrency, "currency", "", "Currency code (required)")
	accountCreateCmd.Flags().StringVar(&accountOpening, "opening", "", "Opening balance in major units, e.g. 1500.00")
	accountCreateCmd.Flags().StringVar(&accountOpeningDate, "opening-date", "", "Opening balance date (YYYY-MM-DD, default today)")
	accountCreateCmd.MarkFlagRequired("name")
	accountCreateCmd.MarkFlagRequired("type")
	accountCreateCmd.MarkFlagRequired("currency")

	accountListCmd.Flags().StringVar(&accountHousehold, "household", "", "Household ID")

	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountRenameCmd)
}

func runAccountCreate(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	req := ledger.NewAccount{
		Name:     accountName,
		Type:     accountType,
		Currency: accountCurrency,
	}

	if accountOpening != "" {
		currency, err := a.ledger.Currency(a.ctx, accountCurrency)
		exitOnError(err, "invalid currency")
		req.OpeningBalanceMinor, err = amount.Parse(accountOpening, currency.MinorUnit)
		exitOnError(err, "invalid opening balance")
	}
	if accountOpeningDate != "" {
		d, err := date.Parse(accountOpeningDate)
		exitOnError(err, "invalid opening date")
		req.OpeningBalanceDate = d
	}

	account, err := a.ledger.CreateAccount(a.ctx, actorID, req)
	exitOnError(err, "failed to create account")

	fmt.Printf("%s %s\n", account.ID, account)
}

func runAccountList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	accounts, err := a.ledger.ListAccounts(a.ctx, actorID, modeFor(accountHousehold), accountHousehold)
	exitOnError(err, "failed to list accounts")

	if len(accounts) == 0 {
		fmt.Println("No accounts")
		return
	}
	for _, acct := range accounts {
		owner := ""
		if acct.OwnerID != actorID {
			owner = "(shared)"
		}
		fmt.Printf("%s  %-9s %-3s  %s %s\n", acct.ID, acct.Type, acct.Currency, acct.Name, owner)
	}
}

func runAccountRename(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	account, err := a.ledger.RenameAccount(a.ctx, actorID, args[0], strings.TrimSpace(args[1]))
	exitOnError(err, "failed to rename account")

	fmt.Printf("%s %s\n", account.ID, account)
}
