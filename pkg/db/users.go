package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

func (r *repository) FindCurrency(ctx context.Context, code string) (*ledger.Currency, error) {
	var c ledger.Currency
	err := r.queryRow(ctx, `SELECT code, minor_unit, name FROM currencies WHERE code = ?`, code).
		Scan(&c.Code, &c.MinorUnit, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &c, nil
}

func (r *repository) ListCurrencies(ctx context.Context) ([]ledger.Currency, error) {
	rows, err := r.query(ctx, `SELECT code, minor_unit, name FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []ledger.Currency
	for rows.Next() {
		var c ledger.Currency
		if err := rows.Scan(&c.Code, &c.MinorUnit, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

func (r *repository) CreateUser(ctx context.Context, user *ledger.User) error {
	_, err := r.exec(ctx, `INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)`,
		user.ID, user.Email, user.CreatedAt)
	if isUniqueViolation(err) {
		return ledger.NewConflict("User '%s' already exists", user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*ledger.User, error) {
	var u ledger.User
	err := r.queryRow(ctx, `SELECT id, email, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// LockUser uses SELECT ... FOR UPDATE on PostgreSQL. SQLite transactions
// already hold the database write lock from BEGIN IMMEDIATE.
func (r *repository) LockUser(ctx context.Context, userID string) (bool, error) {
	query := `SELECT id FROM users WHERE id = ?`
	if r.dialect == Postgres {
		query += ` FOR UPDATE`
	}

	var id string
	err := r.queryRow(ctx, query, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock user: %w", err)
	}
	return true, nil
}
