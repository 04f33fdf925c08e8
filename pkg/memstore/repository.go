package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

var errReadOnly = errors.New("memstore: write in read-only transaction")

type repository struct {
	data     *state
	readOnly bool
}

func (r *repository) writable() error {
	if r.readOnly {
		return errReadOnly
	}
	return nil
}

// Currencies

func (r *repository) FindCurrency(ctx context.Context, code string) (*ledger.Currency, error) {
	c, ok := r.data.currencies[code]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *repository) ListCurrencies(ctx context.Context) ([]ledger.Currency, error) {
	out := make([]ledger.Currency, 0, len(r.data.currencies))
	for _, c := range r.data.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Users

func (r *repository) CreateUser(ctx context.Context, user *ledger.User) error {
	if err := r.writable(); err != nil {
		return err
	}
	for _, u := range r.data.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ledger.NewConflict("User '%s' already exists", user.Email)
		}
	}
	r.data.users[user.ID] = *user
	return nil
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*ledger.User, error) {
	for _, u := range r.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// LockUser only checks existence; Update already holds the store lock.
func (r *repository) LockUser(ctx context.Context, userID string) (bool, error) {
	_, ok := r.data.users[userID]
	return ok, nil
}

// Accounts

func (r *repository) FindAccountsByIDs(ctx context.Context, ids []string) ([]ledger.Account, error) {
	var out []ledger.Account
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if a, ok := r.data.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *repository) FindAccountsByOwner(ctx context.Context, ownerID string) ([]ledger.Account, error) {
	var out []ledger.Account
	for _, a := range r.data.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *repository) FindAccountByKey(ctx context.Context, ownerID string, typ ledger.AccountType, currency, name string) (*ledger.Account, error) {
	for _, a := range r.data.accounts {
		if a.OwnerID == ownerID && a.Type == typ && a.Currency == currency && a.Name == name {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *repository) SaveAccount(ctx context.Context, account *ledger.Account) error {
	if err := r.writable(); err != nil {
		return err
	}
	if _, ok := r.data.users[account.OwnerID]; !ok {
		return errors.New("memstore: account owner does not exist")
	}
	for _, a := range r.data.accounts {
		if a.ID != account.ID && a.OwnerID == account.OwnerID && a.Type == account.Type &&
			a.Currency == account.Currency && a.Name == account.Name {
			return ledger.NewConflict("Account '%s' already exists", account.Name)
		}
	}
	r.data.accounts[account.ID] = *account
	return nil
}

// Category tags

func (r *repository) FindCategoryTagsByIDs(ctx context.Context, ids []string) ([]ledger.CategoryTag, error) {
	var out []ledger.CategoryTag
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if t, ok := r.data.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *repository) FindCategoryTagsByOwner(ctx context.Context, ownerID string) ([]ledger.CategoryTag, error) {
	var out []ledger.CategoryTag
	for _, t := range r.data.tags {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *repository) CategoryNameTaken(ctx context.Context, ownerID, name string) (bool, error) {
	for _, t := range r.data.tags {
		if t.OwnerID == ownerID && strings.EqualFold(t.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *repository) CategoryTagInUse(ctx context.Context, id string) (bool, error) {
	for _, txn := range r.data.transactions {
		for _, s := range txn.Splits {
			if s.CategoryTagID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *repository) SaveCategoryTag(ctx context.Context, tag *ledger.CategoryTag) error {
	if err := r.writable(); err != nil {
		return err
	}
	for _, t := range r.data.tags {
		if t.ID != tag.ID && t.OwnerID == tag.OwnerID && strings.EqualFold(t.Name, tag.Name) {
			return ledger.NewConflict("Category '%s' already exists", tag.Name)
		}
	}
	r.data.tags[tag.ID] = *tag
	return nil
}

func (r *repository) DeleteCategoryTag(ctx context.Context, id string) error {
	if err := r.writable(); err != nil {
		return err
	}
	delete(r.data.tags, id)
	return nil
}

// Households

func (r *repository) HouseholdExists(ctx context.Context, householdID string) (bool, error) {
	_, ok := r.data.households[householdID]
	return ok, nil
}

func (r *repository) IsActiveMember(ctx context.Context, householdID, userID string) (bool, error) {
	m, ok := r.data.members[pairKey{householdID, userID}]
	return ok && m.Status == ledger.MemberActive, nil
}

func (r *repository) SharedAccountIDs(ctx context.Context, householdID string) (map[string]bool, error) {
	out := make(map[string]bool)
	for k := range r.data.shares {
		if k.householdID == householdID {
			out[k.otherID] = true
		}
	}
	return out, nil
}

func (r *repository) IsAccountShared(ctx context.Context, householdID, accountID string) (bool, error) {
	_, ok := r.data.shares[pairKey{householdID, accountID}]
	return ok, nil
}

func (r *repository) SaveHousehold(ctx context.Context, household *ledger.HouseholdInfo) error {
	if err := r.writable(); err != nil {
		return err
	}
	r.data.households[household.ID] = *household
	return nil
}

func (r *repository) FindMember(ctx context.Context, householdID, userID string) (*ledger.Member, error) {
	m, ok := r.data.members[pairKey{householdID, userID}]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *repository) SaveMember(ctx context.Context, member *ledger.Member) error {
	if err := r.writable(); err != nil {
		return err
	}
	if _, ok := r.data.households[member.HouseholdID]; !ok {
		return errors.New("memstore: household does not exist")
	}
	r.data.members[pairKey{member.HouseholdID, member.UserID}] = *member
	return nil
}

func (r *repository) HasActiveMembership(ctx context.Context, userID, exceptHouseholdID string) (bool, error) {
	for k, m := range r.data.members {
		if k.otherID == userID && k.householdID != exceptHouseholdID && m.Status == ledger.MemberActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *repository) SaveShare(ctx context.Context, householdID, accountID string, sharedAt time.Time) error {
	if err := r.writable(); err != nil {
		return err
	}
	r.data.shares[pairKey{householdID, accountID}] = sharedAt
	return nil
}

func (r *repository) DeleteShare(ctx context.Context, householdID, accountID string) error {
	if err := r.writable(); err != nil {
		return err
	}
	delete(r.data.shares, pairKey{householdID, accountID})
	return nil
}

// Transactions

func (r *repository) SaveTransaction(ctx context.Context, txn *ledger.Transaction) error {
	if err := r.writable(); err != nil {
		return err
	}
	if txn.HouseholdID != "" {
		if _, ok := r.data.households[txn.HouseholdID]; !ok {
			return errors.New("memstore: transaction references unknown household")
		}
	}
	for _, s := range txn.Splits {
		if _, ok := r.data.accounts[s.AccountID]; !ok {
			return errors.New("memstore: split references unknown account")
		}
		if s.AmountMinor <= 0 {
			return errors.New("memstore: split amount must be positive")
		}
	}
	stored := *txn
	stored.Splits = append([]ledger.Split(nil), txn.Splits...)
	r.data.transactions = append(r.data.transactions, stored)
	return nil
}

func (r *repository) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, int, error) {
	anyAccount := make(map[string]bool, len(filter.AnyAccountIDs))
	for _, id := range filter.AnyAccountIDs {
		anyAccount[id] = true
	}

	var matched []ledger.Transaction
	for _, txn := range r.data.transactions {
		if filter.CreatedBy != "" && txn.CreatedBy != filter.CreatedBy {
			continue
		}
		if len(anyAccount) > 0 && !touches(txn, func(s ledger.Split) bool { return anyAccount[s.AccountID] }) {
			continue
		}
		if !filter.From.IsZero() && txn.TxnDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && txn.TxnDate.After(filter.To) {
			continue
		}
		if filter.AccountID != "" && !touches(txn, func(s ledger.Split) bool { return s.AccountID == filter.AccountID }) {
			continue
		}
		if filter.CategoryID != "" && !touches(txn, func(s ledger.Split) bool { return s.CategoryTagID == filter.CategoryID }) {
			continue
		}
		matched = append(matched, txn)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.TxnDate != b.TxnDate {
			return a.TxnDate.After(b.TxnDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

func touches(txn ledger.Transaction, match func(ledger.Split) bool) bool {
	for _, s := range txn.Splits {
		if match(s) {
			return true
		}
	}
	return false
}

// Aggregates

func raw(s ledger.Split) int64 {
	if s.Side == ledger.Debit {
		return s.AmountMinor
	}
	return -s.AmountMinor
}

func (r *repository) RawBalances(ctx context.Context, accountIDs []string, asOf date.Date) (map[string]int64, error) {
	wanted := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = true
	}
	out := make(map[string]int64)
	for _, txn := range r.data.transactions {
		if txn.TxnDate.After(asOf) {
			continue
		}
		for _, s := range txn.Splits {
			if wanted[s.AccountID] {
				out[s.AccountID] += raw(s)
			}
		}
	}
	return out, nil
}

func (r *repository) DailyNet(ctx context.Context, accountID string, from, to date.Date) (map[date.Date]int64, error) {
	out := make(map[date.Date]int64)
	for _, txn := range r.data.transactions {
		if txn.TxnDate.Before(from) || txn.TxnDate.After(to) {
			continue
		}
		for _, s := range txn.Splits {
			if s.AccountID == accountID {
				out[txn.TxnDate] += raw(s)
			}
		}
	}
	return out, nil
}

func (r *repository) ExpenseTotals(ctx context.Context, scope ledger.ExpenseScope, from, until date.Date) ([]ledger.ExpenseRow, error) {
	type groupKey struct{ accountID, categoryID string }
	groups := make(map[groupKey]*ledger.ExpenseRow)
	var order []groupKey

	for _, txn := range r.data.transactions {
		if txn.TxnDate.Before(from) || !txn.TxnDate.Before(until) {
			continue
		}
		if scope.HouseholdID != "" && txn.HouseholdID != scope.HouseholdID {
			continue
		}
		for _, s := range txn.Splits {
			account := r.data.accounts[s.AccountID]
			if account.Type != ledger.Expense {
				continue
			}
			if scope.HouseholdID == "" && account.OwnerID != scope.OwnerID {
				continue
			}

			key := groupKey{s.AccountID, s.CategoryTagID}
			row, ok := groups[key]
			if !ok {
				row = &ledger.ExpenseRow{
					AccountID:    account.ID,
					AccountName:  account.Name,
					CategoryID:   s.CategoryTagID,
					CategoryName: r.data.tags[s.CategoryTagID].Name,
					Currency:     account.Currency,
				}
				groups[key] = row
				order = append(order, key)
			}
			row.RawMinor += raw(s)
		}
	}

	out := make([]ledger.ExpenseRow, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out, nil
}

// Compile-time check: ensure repository implements ledger.Repository
var _ ledger.Repository = (*repository)(nil)
