package beancount

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

// ExportResult summarizes one export run.
type ExportResult struct {
	Written  int
	Skipped  int
	Months   []string
	Accounts int
}

// Exporter appends posted transactions to monthly Beancount files.
type Exporter struct {
	repo   Repository
	logger *slog.Logger
}

// NewExporter creates an Exporter writing through repo.
func NewExporter(repo Repository, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{repo: repo, logger: logger}
}

// Export writes txns grouped by month in date order. exponents maps a
// currency code to its decimal places. Transactions whose id already
// appears in the month file are skipped. With dryRun set nothing is
// written but the result is still computed.
func (e *Exporter) Export(txns []ledger.PostedTransaction, exponents map[string]int, dryRun bool) (*ExportResult, error) {
	sorted := make([]ledger.PostedTransaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TxnDate != sorted[j].TxnDate {
			return sorted[i].TxnDate.Before(sorted[j].TxnDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	result := &ExportResult{}
	byMonth := make(map[date.Month][]ledger.PostedTransaction)
	var months []date.Month
	for _, txn := range sorted {
		month := date.MonthOf(txn.TxnDate)
		if _, ok := byMonth[month]; !ok {
			months = append(months, month)
		}
		byMonth[month] = append(byMonth[month], txn)
	}

	opens := newOpenSet()
	existingOpens, err := e.repo.ReadAccounts()
	if err != nil {
		return nil, err
	}
	opens.parse(existingOpens)
	known := len(opens.order)
	opens.changed = false

	for _, month := range months {
		var existing string
		if e.repo.MonthFileExists(month) {
			content, err := e.repo.ReadMonthFile(month)
			if err != nil {
				return nil, err
			}
			existing = content
		}

		written := 0
		for _, txn := range byMonth[month] {
			exponent, ok := exponents[txn.Currency]
			if !ok {
				return nil, fmt.Errorf("unknown currency %s for transaction %s", txn.Currency, txn.ID)
			}
			entry := Convert(txn, exponent)
			opens.add(entry, txn.Currency)

			if strings.Contains(existing, fmt.Sprintf("%s: %s", IDKey, quote(txn.ID))) {
				result.Skipped++
				e.logger.Debug("Transaction already exported", "id", txn.ID, "month", month.String())
				continue
			}

			if !dryRun {
				if err := e.repo.AppendTransaction(month, Format(entry)); err != nil {
					return nil, fmt.Errorf("failed to append transaction %s: %w", txn.ID, err)
				}
			}
			written++
		}

		result.Written += written
		if written > 0 {
			result.Months = append(result.Months, month.String())
		}
	}

	result.Accounts = len(opens.order) - known
	if !dryRun && opens.changed {
		if err := e.repo.WriteAccounts(opens.directives()); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Beancount export finished",
		"written", result.Written,
		"skipped", result.Skipped,
		"months", len(result.Months),
		"dry_run", dryRun,
	)
	return result, nil
}

// openSet tracks the first date each account appears on.
type openSet struct {
	first    map[string]string
	currency map[string]string
	order    []string
	changed  bool
}

func newOpenSet() *openSet {
	return &openSet{first: make(map[string]string), currency: make(map[string]string)}
}

func (s *openSet) add(txn Transaction, currency string) {
	for _, p := range txn.Postings {
		s.open(txn.Date, p.Account, currency)
	}
}

func (s *openSet) open(day, account, currency string) {
	if first, ok := s.first[account]; ok {
		// ISO dates order as strings
		if day < first {
			s.first[account] = day
			s.changed = true
		}
		return
	}
	s.changed = true
	s.first[account] = day
	s.currency[account] = currency
	s.order = append(s.order, account)
}

// parse loads "DATE open ACCOUNT CURRENCY" lines written by an earlier run.
func (s *openSet) parse(content string) {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 4 && fields[1] == "open" {
			s.open(fields[0], fields[2], fields[3])
		}
	}
}

func (s *openSet) directives() []string {
	accounts := make([]string, len(s.order))
	copy(accounts, s.order)
	sort.Strings(accounts)

	out := make([]string, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, FormatOpen(s.first[account], account, s.currency[account]))
	}
	return out
}
