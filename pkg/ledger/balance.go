package ledger

import (
	"context"
	"fmt"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
)

// Balance returns one account's balance as of asOf, inclusive. Without a
// household id the actor must own the account; with one, the actor must be
// an active member and the account shared into that household.
func (l *Ledger) Balance(ctx context.Context, actorID, accountID string, asOf date.Date, householdID string) (*BalanceResult, error) {
	results, err := l.Balances(ctx, actorID, []string{accountID}, asOf, householdID)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// Balances returns the balances of several accounts as of asOf from one
// grouped aggregation. Accounts without activity report zero. Results follow
// the input order with duplicates collapsed. Any missing or inaccessible
// account fails the whole batch.
func (l *Ledger) Balances(ctx context.Context, actorID string, accountIDs []string, asOf date.Date, householdID string) ([]BalanceResult, error) {
	ids := distinct(accountIDs)
	if len(ids) == 0 {
		return nil, invalidf("At least one account id is required")
	}
	if asOf.IsZero() {
		return nil, invalidf("asOf date is required")
	}

	var results []BalanceResult
	err := l.store.View(ctx, func(repo Repository) error {
		accounts, err := loadReadableAccounts(ctx, repo, actorID, ids, householdID)
		if err != nil {
			return err
		}

		raw, err := repo.RawBalances(ctx, ids, asOf)
		if err != nil {
			return fmt.Errorf("failed to aggregate balances: %w", err)
		}

		results = make([]BalanceResult, 0, len(accounts))
		for _, account := range accounts {
			results = append(results, balanceResult(account, raw[account.ID], asOf))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// BalanceSummary returns the balance of every account the actor owns, from
// one grouped aggregation, ordered by account type then name.
func (l *Ledger) BalanceSummary(ctx context.Context, actorID string, asOf date.Date) ([]BalanceResult, error) {
	if asOf.IsZero() {
		return nil, invalidf("asOf date is required")
	}

	var results []BalanceResult
	err := l.store.View(ctx, func(repo Repository) error {
		accounts, err := repo.FindAccountsByOwner(ctx, actorID)
		if err != nil {
			return fmt.Errorf("failed to load accounts: %w", err)
		}
		if len(accounts) == 0 {
			return nil
		}
		sortAccounts(accounts)

		ids := make([]string, 0, len(accounts))
		for _, account := range accounts {
			ids = append(ids, account.ID)
		}
		raw, err := repo.RawBalances(ctx, ids, asOf)
		if err != nil {
			return fmt.Errorf("failed to aggregate balances: %w", err)
		}

		results = make([]BalanceResult, 0, len(accounts))
		for _, account := range accounts {
			results = append(results, balanceResult(account, raw[account.ID], asOf))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// loadReadableAccounts resolves ids in order and applies the read visibility
// rule to the whole set.
func loadReadableAccounts(ctx context.Context, repo Repository, actorID string, ids []string, householdID string) ([]Account, error) {
	found, err := repo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	byID := make(map[string]Account, len(found))
	present := make(map[string]bool, len(found))
	for _, account := range found {
		byID[account.ID] = account
		present[account.ID] = true
	}
	if missing := missingIDs(ids, present); len(missing) > 0 {
		if len(ids) == 1 {
			return nil, notFoundf("Account not found")
		}
		return nil, notFoundf("Accounts not found: %v", missing)
	}

	accounts := make([]Account, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, byID[id])
	}
	if err := authorizeRead(ctx, repo, actorID, householdID, accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func balanceResult(account Account, raw int64, asOf date.Date) BalanceResult {
	return BalanceResult{
		AccountID:    account.ID,
		AccountName:  account.Name,
		AccountType:  account.Type,
		Currency:     account.Currency,
		BalanceMinor: account.Type.Signed(raw),
		AsOf:         asOf,
	}
}
