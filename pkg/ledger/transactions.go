package ledger

import (
	"context"
	"fmt"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
)

const (
	// DefaultPageSize is used when a query leaves Size at zero.
	DefaultPageSize = 50
	// MaxPageSize caps Size.
	MaxPageSize = 200
)

// TransactionQuery selects transactions visible to an actor. An empty Mode
// means individual mode. Zero dates and empty ids are not applied. Page is
// zero-based.
type TransactionQuery struct {
	Mode        Mode
	HouseholdID string
	From        date.Date
	To          date.Date
	AccountID   string
	CategoryID  string
	Page        int
	Size        int
}

// TransactionPage is one page of materialized transactions.
type TransactionPage struct {
	Items      []PostedTransaction
	Page       int
	Size       int
	Total      int
	TotalPages int
}

// ListTransactions pages through transactions, newest first. Individual mode
// lists transactions the actor created; household mode lists transactions
// touching any account shared into the household.
func (l *Ledger) ListTransactions(ctx context.Context, actorID string, query TransactionQuery) (*TransactionPage, error) {
	mode := Individual
	if query.Mode != "" {
		parsed, err := ParseMode(string(query.Mode))
		if err != nil {
			return nil, err
		}
		mode = parsed
	}
	if query.Page < 0 {
		return nil, invalidf("page must not be negative")
	}
	size := query.Size
	switch {
	case size < 0:
		return nil, invalidf("size must not be negative")
	case size == 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	if !query.From.IsZero() && !query.To.IsZero() && query.From.After(query.To) {
		return nil, invalidf("dateFrom must be before or equal to dateTo")
	}

	page := &TransactionPage{Page: query.Page, Size: size, Items: []PostedTransaction{}}
	err := l.store.View(ctx, func(repo Repository) error {
		filter := TransactionFilter{
			From:       query.From,
			To:         query.To,
			AccountID:  query.AccountID,
			CategoryID: query.CategoryID,
			Limit:      size,
			Offset:     query.Page * size,
		}

		if mode == Household {
			if err := requireActiveMember(ctx, repo, query.HouseholdID, actorID); err != nil {
				return err
			}
			shared, err := repo.SharedAccountIDs(ctx, query.HouseholdID)
			if err != nil {
				return fmt.Errorf("failed to load shared accounts: %w", err)
			}
			if len(shared) == 0 {
				return nil
			}
			for id := range shared {
				filter.AnyAccountIDs = append(filter.AnyAccountIDs, id)
			}
		} else {
			filter.CreatedBy = actorID
		}

		txns, total, err := repo.ListTransactions(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		page.Total = total

		views, err := materializeAll(ctx, repo, txns)
		if err != nil {
			return err
		}
		page.Items = views
		return nil
	})
	if err != nil {
		return nil, err
	}

	page.TotalPages = (page.Total + size - 1) / size
	return page, nil
}

// materializeAll resolves the accounts and tags of txns with one bulk lookup
// each and builds their views.
func materializeAll(ctx context.Context, repo Repository, txns []Transaction) ([]PostedTransaction, error) {
	var accountIDs, tagIDs []string
	for _, txn := range txns {
		for _, split := range txn.Splits {
			accountIDs = append(accountIDs, split.AccountID)
			tagIDs = append(tagIDs, split.CategoryTagID)
		}
	}
	accountIDs = distinct(accountIDs)
	tagIDs = distinct(tagIDs)

	accounts := make(map[string]Account, len(accountIDs))
	if len(accountIDs) > 0 {
		found, err := repo.FindAccountsByIDs(ctx, accountIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load accounts: %w", err)
		}
		for _, account := range found {
			accounts[account.ID] = account
		}
	}

	tags := make(map[string]CategoryTag, len(tagIDs))
	if len(tagIDs) > 0 {
		found, err := repo.FindCategoryTagsByIDs(ctx, tagIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load category tags: %w", err)
		}
		for _, tag := range found {
			tags[tag.ID] = tag
		}
	}

	views := make([]PostedTransaction, 0, len(txns))
	for i := range txns {
		views = append(views, *materialize(&txns[i], accounts, tags))
	}
	return views, nil
}
