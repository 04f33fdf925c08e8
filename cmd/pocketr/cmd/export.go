package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/pocketr/pkg/beancount"
	"github.com/shunichi-ikebuchi/pocketr/pkg/config"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
	"github.com/shunichi-ikebuchi/pocketr/pkg/pathutil"
)

var (
	exportFrom      string
	exportTo        string
	exportHousehold string
	dryRun          bool
	filesYear       int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger data",
}

// exportBeancountCmd represents the export beancount command.
var exportBeancountCmd = &cobra.Command{
	Use:   "beancount",
	Short: "Append transactions to monthly Beancount files",
	Long: `Append the transactions visible to you to Beancount files.

This command:
1. Lists your transactions (or a household's) in the date range
2. Converts them to Beancount entries tagged with their categories
3. Skips entries already present in the month file
4. Appends to {export}/{YYYY}/{YYYY-MM}.beancount
5. Writes open directives to {export}/accounts.beancount

Example:
  pocketr export beancount --from 2026-01-01 --to 2026-01-31
  pocketr export beancount --from 2026-01-01 --to 2026-01-31 --dry-run`,
	Args: cobra.NoArgs,
	Run:  runExportBeancount,
}

var exportFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the monthly Beancount files of a year",
	Long: `List the monthly Beancount files written for a year.

Example:
  pocketr export files --year 2026`,
	Args: cobra.NoArgs,
	Run:  runExportFiles,
}

func init() {
	exportBeancountCmd.Flags().StringVar(&exportFrom, "from", "", "Start date (YYYY-MM-DD)")
	exportBeancountCmd.Flags().StringVar(&exportTo, "to", "", "End date (YYYY-MM-DD)")
	exportBeancountCmd.Flags().StringVar(&exportHousehold, "household", "", "Export household transactions")
	exportBeancountCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no file writes)")

	exportFilesCmd.Flags().IntVar(&filesYear, "year", time.Now().Year(), "Year to list")

	exportCmd.AddCommand(exportBeancountCmd)
	exportCmd.AddCommand(exportFilesCmd)
}

func runExportBeancount(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	actorID := a.actor()

	slog.Info("Starting export", "from", exportFrom, "to", exportTo, "dry_run", dryRun)

	query := ledger.TransactionQuery{
		Mode:        modeFor(exportHousehold),
		HouseholdID: exportHousehold,
		From:        optionalDate(exportFrom, "from date"),
		To:          optionalDate(exportTo, "to date"),
		Size:        ledger.MaxPageSize,
	}

	var txns []ledger.PostedTransaction
	for {
		page, err := a.ledger.ListTransactions(a.ctx, actorID, query)
		exitOnError(err, "failed to list transactions")

		txns = append(txns, page.Items...)
		if query.Page+1 >= page.TotalPages {
			break
		}
		query.Page++
	}
	slog.Info("Fetched transactions", "count", len(txns))

	if len(txns) == 0 {
		fmt.Println("No transactions to export")
		return
	}

	repo := beancount.NewFileSystemRepository(a.paths)
	exporter := beancount.NewExporter(repo, slog.Default())

	result, err := exporter.Export(txns, a.exponents(), dryRun)
	exitOnError(err, "failed to export")

	if dryRun {
		fmt.Println("\n=== Dry Run Summary ===")
	} else {
		fmt.Println("\n=== Export Summary ===")
	}
	fmt.Printf("Written:      %d\n", result.Written)
	fmt.Printf("Skipped:      %d\n", result.Skipped)
	fmt.Printf("New accounts: %d\n", result.Accounts)
	for _, month := range result.Months {
		path, err := a.paths.GetMonthFilePath(month)
		exitOnError(err, "failed to resolve month file")
		fmt.Printf("  %s\n", path)
	}
	fmt.Println()
}

func runExportFiles(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	paths := pathutil.New(pathutil.Config{
		DataDir:   cfg.Paths.DataDir,
		ExportDir: cfg.Paths.ExportDir,
	})
	repo := beancount.NewFileSystemRepository(paths)

	months, err := repo.GetMonthFilesInYear(filesYear)
	exitOnError(err, "failed to list month files")

	if len(months) == 0 {
		fmt.Printf("No Beancount files for %d\n", filesYear)
		return
	}
	for _, month := range months {
		path, err := paths.GetMonthFilePath(month)
		exitOnError(err, "failed to resolve month file")
		fmt.Println(path)
	}
}
