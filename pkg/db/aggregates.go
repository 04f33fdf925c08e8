package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

// signedAmount is debit minus credit for one split row aliased s.
const signedAmount = `CASE WHEN s.side = 'DEBIT' THEN s.amount_minor ELSE -s.amount_minor END`

func (r *repository) RawBalances(ctx context.Context, accountIDs []string, asOf date.Date) (map[string]int64, error) {
	out := make(map[string]int64)
	if len(accountIDs) == 0 {
		return out, nil
	}

	args := append(stringArgs(accountIDs), asOf)
	rows, err := r.query(ctx, `
		SELECT s.account_id, SUM(`+signedAmount+`)
		FROM ledger_splits s
		JOIN ledger_txns t ON t.id = s.txn_id
		WHERE s.account_id IN (`+placeholders(len(accountIDs))+`)
		  AND t.txn_date <= ?
		GROUP BY s.account_id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var sum int64
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		out[id] = sum
	}
	return out, rows.Err()
}

func (r *repository) DailyNet(ctx context.Context, accountID string, from, to date.Date) (map[date.Date]int64, error) {
	rows, err := r.query(ctx, `
		SELECT t.txn_date, SUM(`+signedAmount+`)
		FROM ledger_splits s
		JOIN ledger_txns t ON t.id = s.txn_id
		WHERE s.account_id = ?
		  AND t.txn_date >= ?
		  AND t.txn_date <= ?
		GROUP BY t.txn_date`,
		accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum daily movements: %w", err)
	}
	defer rows.Close()

	out := make(map[date.Date]int64)
	for rows.Next() {
		var day date.Date
		var sum int64
		if err := rows.Scan(&day, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan daily movement: %w", err)
		}
		out[day] = sum
	}
	return out, rows.Err()
}

func (r *repository) ExpenseTotals(ctx context.Context, scope ledger.ExpenseScope, from, until date.Date) ([]ledger.ExpenseRow, error) {
	query := `
		SELECT a.id, a.name, s.category_tag_id, COALESCE(c.name, ''), a.currency, SUM(` + signedAmount + `)
		FROM ledger_splits s
		JOIN ledger_txns t ON t.id = s.txn_id
		JOIN accounts a ON a.id = s.account_id
		LEFT JOIN category_tags c ON c.id = s.category_tag_id
		WHERE a.type = 'EXPENSE'
		  AND t.txn_date >= ?
		  AND t.txn_date < ?`
	args := []any{from, until}

	if scope.HouseholdID != "" {
		query += ` AND t.household_id = ?`
		args = append(args, scope.HouseholdID)
	} else {
		query += ` AND a.owner_id = ?`
		args = append(args, scope.OwnerID)
	}
	query += `
		GROUP BY a.id, a.name, s.category_tag_id, c.name, a.currency`

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}
	defer rows.Close()

	var out []ledger.ExpenseRow
	for rows.Next() {
		var row ledger.ExpenseRow
		var categoryID sql.NullString
		if err := rows.Scan(
			&row.AccountID,
			&row.AccountName,
			&categoryID,
			&row.CategoryName,
			&row.Currency,
			&row.RawMinor,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		row.CategoryID = categoryID.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// Compile-time check: ensure repository implements ledger.Repository
var _ ledger.Repository = (*repository)(nil)
