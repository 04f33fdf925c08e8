// Package cmd provides CLI commands for pocketr.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/pocketr/pkg/amount"
	"github.com/shunichi-ikebuchi/pocketr/pkg/config"
	"github.com/shunichi-ikebuchi/pocketr/pkg/db"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
	"github.com/shunichi-ikebuchi/pocketr/pkg/pathutil"
)

var (
	cfgFile   string
	debug     bool
	actorFlag string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pocketr",
	Short: "Household double-entry ledger",
	Long: `pocketr keeps a double-entry ledger for one person or a household.

It supports:
- Accounts with opening balances and category tags
- Balanced multi-split transactions, individually or inside a household
- Balances, daily balance series and monthly expense reports
- Export to Beancount monthly files

Example:
  pocketr user add alice@example.com
  pocketr account create --as alice@example.com --name Checking --type ASSET --currency EUR --opening 1500.00
  pocketr txn post --as alice@example.com --date 2026-02-01 --desc Groceries \
      --split <groceries-id>:DEBIT:42.50 --split <checking-id>:CREDIT:42.50
  pocketr balance <checking-id> --as-of 2026-02-28`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug || os.Getenv("DEBUG") == "true" {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "as", "", "acting user e-mail (default is POCKETR_USER)")

	// Add subcommands
	rootCmd.AddCommand(currenciesCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(txnCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(timeseriesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(householdCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}

// app bundles what a command needs after startup.
type app struct {
	ctx    context.Context
	cfg    *config.Config
	paths  *pathutil.PathResolver
	conn   *db.Connection
	store  *db.Store
	ledger *ledger.Ledger
}

// openApp loads configuration, opens the database and seeds currencies.
func openApp() *app {
	slog.Debug("Loading configuration")

	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	if cfg.IsPostgres() {
		exitOnError(cfg.Validate("database.dsn"), "invalid configuration")
	}

	dialect, err := db.ParseDialect(cfg.Database.Driver)
	exitOnError(err, "invalid configuration")

	paths := pathutil.New(pathutil.Config{
		DataDir:      cfg.Paths.DataDir,
		DatabasePath: sqlitePath(cfg),
		ExportDir:    cfg.Paths.ExportDir,
	})

	dsn := cfg.Database.DSN
	if dialect == db.SQLite {
		dsn = paths.GetDatabasePath()
	}
	slog.Debug("Opening database", "driver", dialect, "data_dir", paths.GetDataDir(), "path", paths.GetDatabasePath())

	conn, err := db.Open(dialect, dsn)
	exitOnError(err, "failed to open database")

	ctx := context.Background()
	store := db.NewStore(conn)

	currencies, err := db.LoadCurrencies(cfg.Paths.CurrenciesFile)
	exitOnError(err, "failed to load currencies")
	seeded, err := store.SeedCurrencies(ctx, currencies)
	exitOnError(err, "failed to seed currencies")
	if seeded > 0 {
		slog.Info("Seeded currencies", "count", seeded)
	}

	return &app{
		ctx:    ctx,
		cfg:    cfg,
		paths:  paths,
		conn:   conn,
		store:  store,
		ledger: ledger.New(store, ledger.WithLogger(slog.Default())),
	}
}

func sqlitePath(cfg *config.Config) string {
	if cfg.IsPostgres() {
		return ""
	}
	return cfg.Database.DSN
}

func (a *app) Close() {
	if err := a.conn.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// actor resolves --as, falling back to POCKETR_USER.
func (a *app) actor() string {
	email := actorFlag
	if email == "" {
		email = a.cfg.User
	}
	if email == "" {
		exitOnError(fmt.Errorf("use --as or set POCKETR_USER"), "no acting user")
	}

	user, err := a.ledger.UserByEmail(a.ctx, email)
	exitOnError(err, "failed to resolve acting user")
	return user.ID
}

// exponents maps currency codes to their decimal places.
func (a *app) exponents() map[string]int {
	currencies, err := a.ledger.Currencies(a.ctx)
	exitOnError(err, "failed to load currencies")

	out := make(map[string]int, len(currencies))
	for _, c := range currencies {
		out[c.Code] = c.MinorUnit
	}
	return out
}

func (a *app) format(minor int64, currency string, exponents map[string]int) string {
	return amount.Format(minor, currency, exponents[currency])
}

// modeFor returns HOUSEHOLD when a household id is given.
func modeFor(householdID string) ledger.Mode {
	if strings.TrimSpace(householdID) != "" {
		return ledger.Household
	}
	return ledger.Individual
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Debug(msg, "error", err, "kind", string(ledger.KindOf(err)))
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
