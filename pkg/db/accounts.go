package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

const accountColumns = `id, owner_id, name, type, currency, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (ledger.Account, error) {
	var a ledger.Account
	var typ string
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &typ, &a.Currency, &a.CreatedAt)
	a.Type = ledger.AccountType(typ)
	return a, err
}

func (r *repository) queryAccounts(ctx context.Context, query string, args ...any) ([]ledger.Account, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) FindAccountsByIDs(ctx context.Context, ids []string) ([]ledger.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
}

func (r *repository) FindAccountsByOwner(ctx context.Context, ownerID string) ([]ledger.Account, error) {
	return r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY created_at, id`,
		ownerID)
}

func (r *repository) FindAccountByKey(ctx context.Context, ownerID string, typ ledger.AccountType, currency, name string) (*ledger.Account, error) {
	row := r.queryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE owner_id = ? AND type = ? AND currency = ? AND name = ?`,
		ownerID, string(typ), currency, name)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// SaveAccount inserts the account; an existing id only has its name updated.
func (r *repository) SaveAccount(ctx context.Context, account *ledger.Account) error {
	query := `
		INSERT INTO accounts (id, owner_id, name, type, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name
	`

	_, err := r.exec(ctx, query,
		account.ID,
		account.OwnerID,
		account.Name,
		string(account.Type),
		account.Currency,
		account.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ledger.NewConflict("Account '%s' already exists", account.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}
