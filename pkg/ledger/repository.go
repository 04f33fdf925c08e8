package ledger

import (
	"context"
	"time"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
)

// Store runs a function inside one transaction of the backing store.
// If fn returns an error, nothing it wrote is kept.
type Store interface {
	// Update runs fn in a read-write transaction.
	Update(ctx context.Context, fn func(Repository) error) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Repository) error) error
}

// Repository is the set of storage operations available inside a Store
// transaction. Finder methods return (nil, nil) when a single row is absent;
// bulk finders return only the rows that exist.
type Repository interface {
	// Currencies

	FindCurrency(ctx context.Context, code string) (*Currency, error)
	ListCurrencies(ctx context.Context) ([]Currency, error)

	// Users

	CreateUser(ctx context.Context, user *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	// LockUser takes a row lock on the user for the rest of the transaction.
	// It returns false when the user does not exist.
	LockUser(ctx context.Context, userID string) (bool, error)

	// Accounts

	FindAccountsByIDs(ctx context.Context, ids []string) ([]Account, error)
	FindAccountsByOwner(ctx context.Context, ownerID string) ([]Account, error)
	FindAccountByKey(ctx context.Context, ownerID string, typ AccountType, currency, name string) (*Account, error)
	// SaveAccount inserts the account, or updates its name when the id exists.
	SaveAccount(ctx context.Context, account *Account) error

	// Category tags

	FindCategoryTagsByIDs(ctx context.Context, ids []string) ([]CategoryTag, error)
	FindCategoryTagsByOwner(ctx context.Context, ownerID string) ([]CategoryTag, error)
	// CategoryNameTaken compares names case-insensitively.
	CategoryNameTaken(ctx context.Context, ownerID, name string) (bool, error)
	CategoryTagInUse(ctx context.Context, id string) (bool, error)
	// SaveCategoryTag inserts the tag, or updates name and color when the id exists.
	SaveCategoryTag(ctx context.Context, tag *CategoryTag) error
	DeleteCategoryTag(ctx context.Context, id string) error

	// Households

	HouseholdExists(ctx context.Context, householdID string) (bool, error)
	IsActiveMember(ctx context.Context, householdID, userID string) (bool, error)
	SharedAccountIDs(ctx context.Context, householdID string) (map[string]bool, error)
	IsAccountShared(ctx context.Context, householdID, accountID string) (bool, error)
	SaveHousehold(ctx context.Context, household *HouseholdInfo) error
	FindMember(ctx context.Context, householdID, userID string) (*Member, error)
	// SaveMember inserts or updates a membership.
	SaveMember(ctx context.Context, member *Member) error
	// HasActiveMembership reports whether the user is ACTIVE in any household
	// other than exceptHouseholdID.
	HasActiveMembership(ctx context.Context, userID, exceptHouseholdID string) (bool, error)
	SaveShare(ctx context.Context, householdID, accountID string, sharedAt time.Time) error
	DeleteShare(ctx context.Context, householdID, accountID string) error

	// Transactions

	// SaveTransaction writes the transaction row and every split.
	SaveTransaction(ctx context.Context, txn *Transaction) error
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, int, error)

	// Aggregates. Raw amounts are debit minus credit.

	RawBalances(ctx context.Context, accountIDs []string, asOf date.Date) (map[string]int64, error)
	DailyNet(ctx context.Context, accountID string, from, to date.Date) (map[date.Date]int64, error)
	// ExpenseTotals groups splits on EXPENSE accounts with from <= date < until.
	ExpenseTotals(ctx context.Context, scope ExpenseScope, from, until date.Date) ([]ExpenseRow, error)
}

// TransactionFilter selects transactions for ListTransactions. Exactly one
// of CreatedBy or AnyAccountIDs scopes the query; zero dates and empty ids
// are not applied.
type TransactionFilter struct {
	CreatedBy     string
	AnyAccountIDs []string
	From          date.Date
	To            date.Date
	AccountID     string
	CategoryID    string
	Limit         int
	Offset        int
}
