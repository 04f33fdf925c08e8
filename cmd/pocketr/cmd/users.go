package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// currenciesCmd represents the currencies command.
var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List supported currencies",
	Args:  cobra.NoArgs,
	Run:   runCurrencies,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add EMAIL",
	Short: "Register a user",
	Args:  cobra.ExactArgs(1),
	Run:   runUserAdd,
}

func init() {
	userCmd.AddCommand(userAddCmd)
}

func runCurrencies(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	currencies, err := a.ledger.Currencies(a.ctx)
	exitOnError(err, "failed to list currencies")

	for _, c := range currencies {
		fmt.Printf("%-4s %d  %s\n", c.Code, c.MinorUnit, c.Name)
	}
}

func runUserAdd(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	user, err := a.ledger.RegisterUser(a.ctx, args[0])
	exitOnError(err, "failed to register user")

	fmt.Printf("%s %s\n", user.ID, user.Email)
}
