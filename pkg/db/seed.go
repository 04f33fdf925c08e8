package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

//go:embed currencies.yaml
var defaultCurrencies []byte

// currencyFile is the YAML layout of a currency seed file.
type currencyFile struct {
	Currencies []struct {
		Code      string `yaml:"code"`
		MinorUnit int    `yaml:"minor_unit"`
		Name      string `yaml:"name"`
	} `yaml:"currencies"`
}

// LoadCurrencies reads a currency seed file. An empty path loads the
// built-in list.
func LoadCurrencies(path string) ([]ledger.Currency, error) {
	data := defaultCurrencies
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read currency file: %w", err)
		}
	}
	return parseCurrencies(data)
}

func parseCurrencies(data []byte) ([]ledger.Currency, error) {
	var file currencyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse currency file: %w", err)
	}

	seen := make(map[string]bool, len(file.Currencies))
	currencies := make([]ledger.Currency, 0, len(file.Currencies))
	for i, c := range file.Currencies {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if len(code) != 3 {
			return nil, fmt.Errorf("currency %d: invalid code %q", i, c.Code)
		}
		if c.MinorUnit < 0 {
			return nil, fmt.Errorf("currency %s: minor_unit must not be negative", code)
		}
		if seen[code] {
			return nil, fmt.Errorf("currency %s: duplicate entry", code)
		}
		seen[code] = true
		currencies = append(currencies, ledger.Currency{Code: code, MinorUnit: c.MinorUnit, Name: c.Name})
	}
	return currencies, nil
}

// SeedCurrencies inserts currencies when the table is still empty and
// returns how many rows were written.
func (s *Store) SeedCurrencies(ctx context.Context, currencies []ledger.Currency) (int, error) {
	seeded := 0
	err := s.conn.Transaction(ctx, false, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM currencies`).Scan(&count); err != nil {
			return fmt.Errorf("failed to count currencies: %w", err)
		}
		if count > 0 {
			return nil
		}

		insert := rebind(s.conn.dialect, `INSERT INTO currencies (code, minor_unit, name) VALUES (?, ?, ?)`)
		for _, c := range currencies {
			if _, err := tx.ExecContext(ctx, insert, c.Code, c.MinorUnit, c.Name); err != nil {
				return fmt.Errorf("failed to insert currency %s: %w", c.Code, err)
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return seeded, nil
}
