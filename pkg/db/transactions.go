package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

// SaveTransaction inserts the transaction row and its splits in order.
func (r *repository) SaveTransaction(ctx context.Context, txn *ledger.Transaction) error {
	_, err := r.exec(ctx, `
		INSERT INTO ledger_txns (id, created_by, household_id, txn_date, currency, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.CreatedBy,
		nullString(txn.HouseholdID),
		txn.TxnDate,
		txn.Currency,
		txn.Description,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for i, s := range txn.Splits {
		_, err := r.exec(ctx, `
			INSERT INTO ledger_splits (id, txn_id, position, account_id, side, amount_minor, category_tag_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID,
			txn.ID,
			i,
			s.AccountID,
			string(s.Side),
			s.AmountMinor,
			nullString(s.CategoryTagID),
		)
		if err != nil {
			return fmt.Errorf("failed to insert split %d: %w", i, err)
		}
	}

	return nil
}

// ListTransactions returns one page of matching transactions, newest first,
// together with the total number of matches.
func (r *repository) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, int, error) {
	var (
		conds []string
		args  []any
	)

	if filter.CreatedBy != "" {
		conds = append(conds, "t.created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if len(filter.AnyAccountIDs) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM ledger_splits s
			WHERE s.txn_id = t.id AND s.account_id IN (`+placeholders(len(filter.AnyAccountIDs))+`))`)
		args = append(args, stringArgs(filter.AnyAccountIDs)...)
	}
	if !filter.From.IsZero() {
		conds = append(conds, "t.txn_date >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		conds = append(conds, "t.txn_date <= ?")
		args = append(args, filter.To)
	}
	if filter.AccountID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM ledger_splits s WHERE s.txn_id = t.id AND s.account_id = ?)")
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM ledger_splits s WHERE s.txn_id = t.id AND s.category_tag_id = ?)")
		args = append(args, filter.CategoryID)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM ledger_txns t`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT t.id, t.created_by, t.household_id, t.txn_date, t.currency, t.description, t.created_at, t.updated_at
		FROM ledger_txns t` + where + `
		ORDER BY t.txn_date DESC, t.created_at DESC, t.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		var householdID sql.NullString
		if err := rows.Scan(
			&t.ID,
			&t.CreatedBy,
			&householdID,
			&t.TxnDate,
			&t.Currency,
			&t.Description,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.HouseholdID = householdID.String
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadSplits(ctx, txns); err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// loadSplits fills in Splits for every transaction with one query.
func (r *repository) loadSplits(ctx context.Context, txns []ledger.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	index := make(map[string]int, len(txns))
	ids := make([]string, len(txns))
	for i, t := range txns {
		index[t.ID] = i
		ids[i] = t.ID
	}

	rows, err := r.query(ctx, `
		SELECT id, txn_id, account_id, side, amount_minor, category_tag_id
		FROM ledger_splits
		WHERE txn_id IN (`+placeholders(len(ids))+`)
		ORDER BY txn_id, position`,
		stringArgs(ids)...)
	if err != nil {
		return fmt.Errorf("failed to load splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ledger.Split
		var side string
		var categoryID sql.NullString
		if err := rows.Scan(&s.ID, &s.TransactionID, &s.AccountID, &side, &s.AmountMinor, &categoryID); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		s.Side = ledger.Side(side)
		s.CategoryTagID = categoryID.String

		i := index[s.TransactionID]
		txns[i].Splits = append(txns[i].Splits, s)
	}
	return rows.Err()
}
