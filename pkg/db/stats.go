package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Stats represents ledger statistics.
type Stats struct {
	TotalUsers        int
	TotalAccounts     int
	TotalTransactions int
	TotalSplits       int
	LastPosted        sql.NullString
}

// GetStats retrieves ledger statistics.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	counts := []struct {
		table string
		dest  *int
	}{
		{"users", &stats.TotalUsers},
		{"accounts", &stats.TotalAccounts},
		{"ledger_txns", &stats.TotalTransactions},
		{"ledger_splits", &stats.TotalSplits},
	}

	err := s.conn.Transaction(ctx, true, func(tx *sql.Tx) error {
		for _, c := range counts {
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
				return fmt.Errorf("failed to get %s count: %w", c.table, err)
			}
		}

		// Get last posting time
		err := tx.QueryRowContext(ctx, `SELECT MAX(created_at) FROM ledger_txns`).Scan(&stats.LastPosted)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to get last posting time: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
