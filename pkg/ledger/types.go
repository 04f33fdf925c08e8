package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
)

// AccountType classifies an account and fixes its normal balance side.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// accountTypeOrder is used when listing accounts for display.
var accountTypeOrder = map[AccountType]int{
	Asset:     0,
	Liability: 1,
	Equity:    2,
	Income:    3,
	Expense:   4,
}

// ParseAccountType parses an account type name, case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := accountTypeOrder[t]; !ok {
		return "", invalidf("Invalid account type: %s", s)
	}
	return t, nil
}

// DebitNormal reports whether balances of this type grow with debits.
// ASSET and EXPENSE are debit-normal; LIABILITY, EQUITY and INCOME are credit-normal.
func (t AccountType) DebitNormal() bool {
	return t == Asset || t == Expense
}

// NormalSide returns the side that increases the account's balance.
func (t AccountType) NormalSide() Side {
	if t.DebitNormal() {
		return Debit
	}
	return Credit
}

// Signed converts a raw debit-minus-credit amount into the account type's
// balance convention.
func (t AccountType) Signed(rawDebitMinusCredit int64) int64 {
	if t.DebitNormal() {
		return rawDebitMinusCredit
	}
	return -rawDebitMinusCredit
}

// Side is the debit or credit side of a split.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// Valid reports whether s is DEBIT or CREDIT.
func (s Side) Valid() bool { return s == Debit || s == Credit }

// Mode selects individual or household visibility.
type Mode string

const (
	Individual Mode = "INDIVIDUAL"
	Household  Mode = "HOUSEHOLD"
)

// IsHousehold reports whether m names household mode. Callers may pass any case.
func (m Mode) IsHousehold() bool { return strings.EqualFold(string(m), string(Household)) }

// ParseMode parses INDIVIDUAL or HOUSEHOLD, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case Individual:
		return Individual, nil
	case Household:
		return Household, nil
	default:
		return "", invalidf("Invalid mode: %s. Must be INDIVIDUAL or HOUSEHOLD", s)
	}
}

// Currency is immutable reference data. MinorUnit is the number of decimal
// digits represented by integer minor-unit amounts.
type Currency struct {
	Code      string
	MinorUnit int
	Name      string
}

// User is the identity row accounts and tags hang off.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Account is a ledger account. (OwnerID, Type, Currency, Name) is unique.
type Account struct {
	ID        string
	OwnerID   string
	Name      string
	Type      AccountType
	Currency  string
	CreatedAt time.Time
}

// CategoryTag is an optional label on a split.
type CategoryTag struct {
	ID        string
	OwnerID   string
	Name      string
	Color     string
	CreatedAt time.Time
}

// Transaction is a balanced set of splits posted on one date.
// HouseholdID is empty unless the transaction was posted in household mode.
type Transaction struct {
	ID          string
	CreatedBy   string
	HouseholdID string
	TxnDate     date.Date
	Currency    string
	Description string
	Splits      []Split
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Split is one line of a transaction.
type Split struct {
	ID            string
	TransactionID string
	AccountID     string
	Side          Side
	AmountMinor   int64
	CategoryTagID string
}

// SplitInput is a proposed split before any of its references are resolved.
type SplitInput struct {
	AccountID     string
	Side          Side
	AmountMinor   int64
	CategoryTagID string
}

// PostRequest is a proposed transaction.
type PostRequest struct {
	Currency    string
	TxnDate     date.Date
	Description string
	Mode        Mode
	HouseholdID string
	Splits      []SplitInput
}

// TxnKind is derived from the types of the accounts a transaction touches.
type TxnKind string

const (
	KindTransfer TxnKind = "TRANSFER"
	KindExpense  TxnKind = "EXPENSE"
	KindIncome   TxnKind = "INCOME"
)

// PostedTransaction is the materialized view of a stored transaction.
type PostedTransaction struct {
	ID          string
	CreatedBy   string
	HouseholdID string
	TxnDate     date.Date
	Currency    string
	Description string
	Kind        TxnKind
	Splits      []PostedSplit
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PostedSplit is a split annotated with its account and its signed effect on
// the account's balance.
type PostedSplit struct {
	ID              string
	AccountID       string
	AccountName     string
	AccountType     AccountType
	Side            Side
	AmountMinor     int64
	EffectMinor     int64
	CategoryTagID   string
	CategoryTagName string
}

// BalanceResult is an account balance as of a date.
type BalanceResult struct {
	AccountID    string
	AccountName  string
	AccountType  AccountType
	Currency     string
	BalanceMinor int64
	AsOf         date.Date
}

// TimeseriesPoint is the closing balance of one day.
type TimeseriesPoint struct {
	Date         date.Date
	BalanceMinor int64
}

// AccountTimeseries is a gap-free daily balance series for one account.
type AccountTimeseries struct {
	AccountID   string
	AccountName string
	AccountType AccountType
	Currency    string
	Points      []TimeseriesPoint
}

// MonthlyExpense is the net amount of one (expense account, category) pair.
// An empty CategoryTagID is the uncategorized group.
type MonthlyExpense struct {
	ExpenseAccountID   string
	ExpenseAccountName string
	CategoryTagID      string
	CategoryTagName    string
	Currency           string
	NetMinor           int64
}

// ExpenseRow is the storage-level aggregate behind MonthlyExpense.
// RawMinor is debit minus credit.
type ExpenseRow struct {
	AccountID    string
	AccountName  string
	CategoryID   string
	CategoryName string
	Currency     string
	RawMinor     int64
}

// ExpenseScope restricts ExpenseTotals to one owner or one household.
type ExpenseScope struct {
	OwnerID     string
	HouseholdID string
}

// MemberStatus is the state of a household membership.
type MemberStatus string

const (
	MemberInvited MemberStatus = "INVITED"
	MemberActive  MemberStatus = "ACTIVE"
)

// HouseholdRole is a member's role inside a household.
type HouseholdRole string

const (
	RoleOwner  HouseholdRole = "OWNER"
	RoleAdmin  HouseholdRole = "ADMIN"
	RoleMember HouseholdRole = "MEMBER"
)

// HouseholdInfo is a household row.
type HouseholdInfo struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// Member is a user's membership in a household.
type Member struct {
	HouseholdID string
	UserID      string
	Role        HouseholdRole
	Status      MemberStatus
	InvitedBy   string
	InvitedAt   *time.Time
	JoinedAt    *time.Time
}

// String helps log lines and error messages.
func (a Account) String() string {
	return fmt.Sprintf("%s '%s' (%s)", a.Type, a.Name, a.Currency)
}
