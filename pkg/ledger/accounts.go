package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
)

// NewAccount is a request to open an account. OpeningBalanceMinor is only
// accepted for ASSET accounts; OpeningBalanceDate defaults to today.
type NewAccount struct {
	Name                string
	Type                string
	Currency            string
	OpeningBalanceMinor int64
	OpeningBalanceDate  date.Date
}

// CreateAccount opens an account for actorID and, for a non-zero opening
// balance, posts it against the owner's Opening Equity account in the same
// store transaction.
func (l *Ledger) CreateAccount(ctx context.Context, actorID string, req NewAccount) (*Account, error) {
	accountType, err := ParseAccountType(req.Type)
	if err != nil {
		return nil, err
	}
	if accountType == Equity {
		return nil, invalidf("EQUITY accounts are system-managed and cannot be created manually")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidf("Account name is required")
	}
	if req.OpeningBalanceMinor != 0 && accountType != Asset {
		return nil, invalidf("openingBalanceMinor is supported only for ASSET accounts")
	}
	if req.OpeningBalanceMinor == 0 && !req.OpeningBalanceDate.IsZero() {
		return nil, invalidf("openingBalanceDate requires non-zero openingBalanceMinor")
	}

	var account *Account
	err = l.store.Update(ctx, func(repo Repository) error {
		currency, err := repo.FindCurrency(ctx, strings.ToUpper(strings.TrimSpace(req.Currency)))
		if err != nil {
			return fmt.Errorf("failed to load currency: %w", err)
		}
		if currency == nil {
			return invalidf("Invalid currency: %s", req.Currency)
		}

		existing, err := repo.FindAccountByKey(ctx, actorID, accountType, currency.Code, name)
		if err != nil {
			return fmt.Errorf("failed to check account name: %w", err)
		}
		if existing != nil {
			return conflictf("Account '%s' already exists", name)
		}

		account = &Account{
			ID:        l.newID(),
			OwnerID:   actorID,
			Name:      name,
			Type:      accountType,
			Currency:  currency.Code,
			CreatedAt: l.timestamp(),
		}
		if err := repo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}

		if req.OpeningBalanceMinor == 0 {
			return nil
		}
		openingDate := req.OpeningBalanceDate
		if openingDate.IsZero() {
			openingDate = l.today()
		}
		return l.postOpeningBalance(ctx, repo, account, req.OpeningBalanceMinor, openingDate)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Account created",
		slog.String("id", account.ID),
		slog.String("type", string(account.Type)),
		slog.String("currency", account.Currency),
		slog.Int64("opening_balance_minor", req.OpeningBalanceMinor))
	return account, nil
}

// postOpeningBalance balances a new ASSET account's opening amount against
// the owner's Opening Equity account for the same currency.
func (l *Ledger) postOpeningBalance(ctx context.Context, repo Repository, asset *Account, amountMinor int64, txnDate date.Date) error {
	if asset.Type != Asset {
		return invalidf("Opening balance is supported only for ASSET accounts")
	}
	if amountMinor == 0 {
		return invalidf("openingBalanceMinor must not be zero")
	}
	if amountMinor == math.MinInt64 {
		return invalidf("openingBalanceMinor is out of supported range")
	}

	equity, err := l.openingEquityAccount(ctx, repo, asset.OwnerID, asset.Currency)
	if err != nil {
		return err
	}

	assetSide, equitySide := Debit, Credit
	absolute := amountMinor
	if amountMinor < 0 {
		assetSide, equitySide = Credit, Debit
		absolute = -amountMinor
	}

	posted, err := l.post(ctx, repo, asset.OwnerID, PostRequest{
		Currency:    asset.Currency,
		TxnDate:     txnDate,
		Description: "Opening balance - " + asset.Name,
		Mode:        Individual,
		Splits: []SplitInput{
			{AccountID: asset.ID, Side: assetSide, AmountMinor: absolute},
			{AccountID: equity.ID, Side: equitySide, AmountMinor: absolute},
		},
	})
	if err != nil {
		return err
	}

	l.logger.Info("Opening balance posted",
		slog.String("account", asset.ID),
		slog.String("transaction", posted.ID),
		slog.Int64("amount_minor", amountMinor))
	return nil
}

// openingEquityAccount finds or creates the owner's Opening Equity account
// while holding the owner's row lock, so concurrent callers cannot both
// create one.
func (l *Ledger) openingEquityAccount(ctx context.Context, repo Repository, ownerID, currency string) (*Account, error) {
	found, err := repo.LockUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if !found {
		return nil, notFoundf("User not found")
	}

	existing, err := repo.FindAccountByKey(ctx, ownerID, Equity, currency, OpeningEquityName)
	if err != nil {
		return nil, fmt.Errorf("failed to load opening equity account: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	account := &Account{
		ID:        l.newID(),
		OwnerID:   ownerID,
		Name:      OpeningEquityName,
		Type:      Equity,
		Currency:  currency,
		CreatedAt: l.timestamp(),
	}
	if err := repo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save opening equity account: %w", err)
	}
	return account, nil
}

// RenameAccount changes the name of an account the actor owns.
func (l *Ledger) RenameAccount(ctx context.Context, actorID, accountID, name string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("Account name is required")
	}

	var account *Account
	err := l.store.Update(ctx, func(repo Repository) error {
		found, err := repo.FindAccountsByIDs(ctx, []string{accountID})
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		if len(found) == 0 {
			return notFoundf("Account not found")
		}
		account = &found[0]
		if account.OwnerID != actorID {
			return forbiddenf("Not the owner of this account")
		}
		if account.Name == name {
			return nil
		}

		clash, err := repo.FindAccountByKey(ctx, actorID, account.Type, account.Currency, name)
		if err != nil {
			return fmt.Errorf("failed to check account name: %w", err)
		}
		if clash != nil {
			return conflictf("Account '%s' already exists", name)
		}

		account.Name = name
		if err := repo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns the actor's own accounts, plus in household mode the
// accounts shared into householdID. Each account appears once.
func (l *Ledger) ListAccounts(ctx context.Context, actorID string, mode Mode, householdID string) ([]Account, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	var accounts []Account
	err = l.store.View(ctx, func(repo Repository) error {
		owned, err := repo.FindAccountsByOwner(ctx, actorID)
		if err != nil {
			return fmt.Errorf("failed to load accounts: %w", err)
		}
		if mode == Individual {
			accounts = owned
			return nil
		}

		if err := requireActiveMember(ctx, repo, householdID, actorID); err != nil {
			return err
		}
		sharedIDs, err := repo.SharedAccountIDs(ctx, householdID)
		if err != nil {
			return fmt.Errorf("failed to load shared accounts: %w", err)
		}
		ids := make([]string, 0, len(sharedIDs))
		for id := range sharedIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		var shared []Account
		if len(ids) > 0 {
			if shared, err = repo.FindAccountsByIDs(ctx, ids); err != nil {
				return fmt.Errorf("failed to load shared accounts: %w", err)
			}
		}

		seen := make(map[string]bool, len(owned)+len(shared))
		for _, account := range append(owned, shared...) {
			if seen[account.ID] {
				continue
			}
			seen[account.ID] = true
			accounts = append(accounts, account)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortAccounts(accounts)
	return accounts, nil
}

// sortAccounts orders accounts by type, then name.
func sortAccounts(accounts []Account) {
	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i], accounts[j]
		if a.Type != b.Type {
			return accountTypeOrder[a.Type] < accountTypeOrder[b.Type]
		}
		return a.Name < b.Name
	})
}
