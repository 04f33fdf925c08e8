package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// RegisterUser creates the identity row for email. E-mails are compared
// case-insensitively.
func (l *Ledger) RegisterUser(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalidf("Invalid email: %q", email)
	}

	var user *User
	err := l.store.Update(ctx, func(repo Repository) error {
		existing, err := repo.FindUserByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if existing != nil {
			return conflictf("User '%s' already exists", email)
		}

		user = &User{ID: l.newID(), Email: email, CreatedAt: l.timestamp()}
		if err := repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("User registered", slog.String("id", user.ID), slog.String("email", user.Email))
	return user, nil
}

// UserByEmail looks up a registered user.
func (l *Ledger) UserByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user *User
	err := l.store.View(ctx, func(repo Repository) error {
		var err error
		user, err = repo.FindUserByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if user == nil {
			return notFoundf("User not found with email: %s", email)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Currencies lists the supported currencies.
func (l *Ledger) Currencies(ctx context.Context) ([]Currency, error) {
	var currencies []Currency
	err := l.store.View(ctx, func(repo Repository) error {
		var err error
		currencies, err = repo.ListCurrencies(ctx)
		if err != nil {
			return fmt.Errorf("failed to list currencies: %w", err)
		}
		return nil
	})
	return currencies, err
}

// Currency looks up one currency by code.
func (l *Ledger) Currency(ctx context.Context, code string) (*Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var currency *Currency
	err := l.store.View(ctx, func(repo Repository) error {
		var err error
		currency, err = repo.FindCurrency(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to load currency: %w", err)
		}
		if currency == nil {
			return invalidf("Invalid currency: %s", code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return currency, nil
}
