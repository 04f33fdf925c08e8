package ledger

import (
	"context"
	"fmt"
	"strings"
)

// distinct returns ids without duplicates or empty strings, keeping first-seen order.
func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// missingIDs returns the requested ids that found does not contain.
func missingIDs(requested []string, found map[string]bool) []string {
	var missing []string
	for _, id := range requested {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// partitionByOwner splits accounts into those owned by actorID and the rest.
func partitionByOwner(accounts []Account, actorID string) (owned, nonOwned []Account) {
	for _, account := range accounts {
		if account.OwnerID == actorID {
			owned = append(owned, account)
		} else {
			nonOwned = append(nonOwned, account)
		}
	}
	return owned, nonOwned
}

// resolvePostingAccounts loads every distinct account referenced by splits in
// one lookup and checks each one is denominated in the transaction currency.
func resolvePostingAccounts(ctx context.Context, repo Repository, splits []SplitInput, currency string) ([]Account, map[string]Account, error) {
	ids := make([]string, 0, len(splits))
	for i, split := range splits {
		if strings.TrimSpace(split.AccountID) == "" {
			return nil, nil, invalidf("accountId is required (split %d)", i)
		}
		ids = append(ids, split.AccountID)
	}
	ids = distinct(ids)

	accounts, err := repo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	byID := make(map[string]Account, len(accounts))
	found := make(map[string]bool, len(accounts))
	for _, account := range accounts {
		byID[account.ID] = account
		found[account.ID] = true
	}
	if missing := missingIDs(ids, found); len(missing) > 0 || len(ids) == 0 {
		return nil, nil, invalidf("Accounts not found: %v", missing)
	}

	for _, account := range accounts {
		if account.Currency != currency {
			return nil, nil, invalidf("Account '%s' has currency %s, but transaction currency is %s",
				account.Name, account.Currency, currency)
		}
	}
	return accounts, byID, nil
}

// authorizePosting decides whether actorID may post to accounts. Posting to
// one's own accounts is always allowed; touching anyone else's account needs
// household mode, an active membership, an explicit share for every such
// account, and every such account to be an ASSET.
func authorizePosting(ctx context.Context, repo Repository, actorID string, accounts []Account, mode Mode, householdID string) error {
	_, nonOwned := partitionByOwner(accounts, actorID)
	if len(nonOwned) == 0 {
		return nil
	}

	if !mode.IsHousehold() {
		return forbiddenf("Cannot post to accounts not owned by current user in individual mode")
	}
	if householdID == "" {
		return invalidf("householdId is required for household mode")
	}

	active, err := repo.IsActiveMember(ctx, householdID, actorID)
	if err != nil {
		return fmt.Errorf("failed to check household membership: %w", err)
	}
	if !active {
		return forbiddenf("Not an active member of this household")
	}

	for _, account := range nonOwned {
		shared, err := repo.IsAccountShared(ctx, householdID, account.ID)
		if err != nil {
			return fmt.Errorf("failed to check account share: %w", err)
		}
		if !shared {
			return forbiddenf("Account '%s' is not shared into household", account.Name)
		}
	}

	for _, account := range nonOwned {
		if account.Type != Asset {
			return invalidf("Cross-user transfers only allow ASSET accounts, but '%s' is %s", account.Name, account.Type)
		}
	}
	return nil
}

// resolveCategoryTags loads the distinct tags referenced by splits and
// requires the actor to own each one.
func resolveCategoryTags(ctx context.Context, repo Repository, actorID string, splits []SplitInput) (map[string]CategoryTag, error) {
	ids := make([]string, 0, len(splits))
	for _, split := range splits {
		ids = append(ids, split.CategoryTagID)
	}
	ids = distinct(ids)
	if len(ids) == 0 {
		return map[string]CategoryTag{}, nil
	}

	tags, err := repo.FindCategoryTagsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load category tags: %w", err)
	}

	byID := make(map[string]CategoryTag, len(tags))
	found := make(map[string]bool, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
		found[tag.ID] = true
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, invalidf("Category tags not found: %v", missing)
	}

	for _, tag := range tags {
		if tag.OwnerID != actorID {
			return nil, forbiddenf("Category tag '%s' is not owned by current user", tag.Name)
		}
	}
	return byID, nil
}

// authorizeRead applies the visibility rule shared by balance and timeseries
// queries. Without a household every account must be owned by the actor.
// With one, the actor must be an active member and every account shared.
func authorizeRead(ctx context.Context, repo Repository, actorID, householdID string, accounts []Account) error {
	if householdID == "" {
		for _, account := range accounts {
			if account.OwnerID != actorID {
				return forbiddenf("Not the owner of this account")
			}
		}
		return nil
	}

	active, err := repo.IsActiveMember(ctx, householdID, actorID)
	if err != nil {
		return fmt.Errorf("failed to check household membership: %w", err)
	}
	if !active {
		return forbiddenf("Not an active member of this household")
	}

	if len(accounts) == 1 {
		shared, err := repo.IsAccountShared(ctx, householdID, accounts[0].ID)
		if err != nil {
			return fmt.Errorf("failed to check account share: %w", err)
		}
		if !shared {
			return forbiddenf("Account is not shared into this household")
		}
		return nil
	}

	sharedIDs, err := repo.SharedAccountIDs(ctx, householdID)
	if err != nil {
		return fmt.Errorf("failed to load shared accounts: %w", err)
	}
	for _, account := range accounts {
		if !sharedIDs[account.ID] {
			return forbiddenf("Account is not shared into this household")
		}
	}
	return nil
}

// requireActiveMember is the household gate used by listing and reports.
func requireActiveMember(ctx context.Context, repo Repository, householdID, actorID string) error {
	if householdID == "" {
		return invalidf("householdId is required for household mode")
	}
	active, err := repo.IsActiveMember(ctx, householdID, actorID)
	if err != nil {
		return fmt.Errorf("failed to check household membership: %w", err)
	}
	if !active {
		return forbiddenf("Not an active member of this household")
	}
	return nil
}
