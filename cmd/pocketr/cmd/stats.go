package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger statistics",
	Long: `Display statistics about the ledger database.

Shows:
- Database driver and file
- Total number of users
- Total number of accounts
- Total number of transactions and splits
- Last posting timestamp

Example:
  pocketr stats`,
	Args: cobra.NoArgs,
	Run:  runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	stats, err := a.store.GetStats(a.ctx)
	exitOnError(err, "failed to get statistics")

	// Display statistics
	fmt.Println("\n=== Ledger Statistics ===")
	if path := a.conn.GetPath(); path != "" {
		fmt.Printf("Database:      %s (%s)\n", path, a.conn.Dialect())
	} else {
		fmt.Printf("Database:      %s\n", a.conn.Dialect())
	}
	fmt.Printf("Users:         %d\n", stats.TotalUsers)
	fmt.Printf("Accounts:      %d\n", stats.TotalAccounts)
	fmt.Printf("Transactions:  %d\n", stats.TotalTransactions)
	fmt.Printf("Splits:        %d\n", stats.TotalSplits)

	if stats.LastPosted.Valid {
		fmt.Printf("Last posted:   %s\n", stats.LastPosted.String)
	} else {
		fmt.Printf("Last posted:   (never)\n")
	}

	fmt.Println()

	slog.Debug("Statistics displayed successfully")
}
