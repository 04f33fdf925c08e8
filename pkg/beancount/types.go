// Package beancount renders posted ledger transactions as Beancount entries
// and stores them in monthly files.
package beancount

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shunichi-ikebuchi/pocketr/pkg/amount"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

// IDKey is the metadata key carrying the ledger transaction id.
const IDKey = "txn-id"

// Transaction represents a Beancount transaction.
type Transaction struct {
	Date      string            // YYYY-MM-DD
	Narration string            // Transaction description
	Tags      []string          // Category tags
	Metadata  map[string]string // Metadata key-value pairs
	Postings  []Posting         // Transaction postings
}

// Posting represents a posting in a Beancount transaction.
type Posting struct {
	Account  string // Account name (e.g., "Assets:Checking:EUR")
	Amount   string // Signed decimal, positive for debit
	Currency string // Currency code (e.g., "EUR")
}

var rootNames = map[ledger.AccountType]string{
	ledger.Asset:     "Assets",
	ledger.Liability: "Liabilities",
	ledger.Equity:    "Equity",
	ledger.Income:    "Income",
	ledger.Expense:   "Expenses",
}

// AccountName maps a ledger account to a Beancount account name,
// e.g. (EXPENSE, "eating out", "EUR") becomes "Expenses:EatingOut:EUR".
// Ledger accounts are unique per currency, so the currency is the last
// component and each Beancount account holds a single commodity.
func AccountName(typ ledger.AccountType, name, currency string) string {
	return rootNames[typ] + ":" + component(name, "Unnamed") + ":" + component(strings.ToUpper(currency), "XXX")
}

// component turns free text into a valid Beancount name component: words
// are capitalized and joined, and anything but letters, digits and dashes
// is dropped.
func component(name, fallback string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if upper {
				r = unicode.ToUpper(r)
			}
			sb.WriteRune(r)
			upper = false
		case r == '-' && sb.Len() > 0:
			sb.WriteRune(r)
		default:
			upper = true
		}
	}

	s := sb.String()
	if s == "" {
		return fallback
	}
	if !unicode.IsLetter(rune(s[0])) {
		s = "X" + s
	}
	return s
}

// Tag turns a category name into a Beancount tag without the leading '#'.
func Tag(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
		case r == '-' || r == '_' || r == '/' || r == '.':
			sb.WriteRune(r)
		case unicode.IsSpace(r) && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "-"):
			sb.WriteRune('-')
		}
	}
	return strings.Trim(sb.String(), "-")
}

// Convert builds the Beancount form of a posted transaction. exponent is
// the currency's number of decimal places.
func Convert(txn ledger.PostedTransaction, exponent int) Transaction {
	postings := make([]Posting, 0, len(txn.Splits))
	var tags []string
	seen := make(map[string]bool)

	for _, split := range txn.Splits {
		signed := split.AmountMinor
		if split.Side == ledger.Credit {
			signed = -signed
		}
		postings = append(postings, Posting{
			Account:  AccountName(split.AccountType, split.AccountName, txn.Currency),
			Amount:   amount.Decimal(signed, exponent),
			Currency: txn.Currency,
		})

		if tag := Tag(split.CategoryTagName); tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	return Transaction{
		Date:      txn.TxnDate.String(),
		Narration: txn.Description,
		Tags:      tags,
		Metadata:  map[string]string{IDKey: txn.ID},
		Postings:  postings,
	}
}

// Format formats a Beancount transaction as a string.
func Format(txn Transaction) string {
	var sb strings.Builder

	// Transaction header
	sb.WriteString(txn.Date)
	sb.WriteString(" *")
	sb.WriteString(fmt.Sprintf(" %s", quote(txn.Narration)))
	if len(txn.Tags) > 0 {
		sb.WriteString(" #")
		sb.WriteString(strings.Join(txn.Tags, " #"))
	}
	sb.WriteString("\n")

	if id, ok := txn.Metadata[IDKey]; ok {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", IDKey, quote(id)))
	}

	// Postings
	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		// Right-align amount (typical Beancount style)
		spaces := int(math.Max(2, 60-float64(len(posting.Account)+len(posting.Amount))))
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(fmt.Sprintf("%s %s\n", posting.Amount, posting.Currency))
	}

	return sb.String()
}

// FormatOpen formats an open directive.
func FormatOpen(date, account, currency string) string {
	return fmt.Sprintf("%s open %s %s\n", date, account, currency)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + strings.ReplaceAll(s, "\n", " ") + `"`
}
