// Package db provides SQLite and PostgreSQL storage for the ledger.
package db

// Schema defines the SQL statements to create database tables. It is
// written in the subset both SQLite and PostgreSQL accept.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

-- Reference data, seeded once
CREATE TABLE IF NOT EXISTS currencies (
    code TEXT PRIMARY KEY,
    minor_unit INTEGER NOT NULL CHECK (minor_unit >= 0),
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES users(id),
    name TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('ASSET', 'LIABILITY', 'EQUITY', 'INCOME', 'EXPENSE')),
    currency TEXT NOT NULL REFERENCES currencies(code),
    created_at TIMESTAMP NOT NULL,
    UNIQUE (owner_id, type, currency, name)
);

CREATE INDEX IF NOT EXISTS idx_accounts_owner
    ON accounts(owner_id);

-- name_key is the lower-cased name
CREATE TABLE IF NOT EXISTS category_tags (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES users(id),
    name TEXT NOT NULL,
    name_key TEXT NOT NULL,
    color TEXT,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (owner_id, name_key)
);

CREATE TABLE IF NOT EXISTS households (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_by TEXT NOT NULL REFERENCES users(id),
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS household_members (
    household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id),
    role TEXT NOT NULL CHECK (role IN ('OWNER', 'ADMIN', 'MEMBER')),
    status TEXT NOT NULL CHECK (status IN ('INVITED', 'ACTIVE')),
    invited_by TEXT REFERENCES users(id),
    invited_at TIMESTAMP,
    joined_at TIMESTAMP,
    PRIMARY KEY (household_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_household_members_user
    ON household_members(user_id, status);

CREATE TABLE IF NOT EXISTS household_account_shares (
    household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    shared_at TIMESTAMP NOT NULL,
    PRIMARY KEY (household_id, account_id)
);

-- txn_date is YYYY-MM-DD so text comparison orders by date
CREATE TABLE IF NOT EXISTS ledger_txns (
    id TEXT PRIMARY KEY,
    created_by TEXT NOT NULL REFERENCES users(id),
    household_id TEXT REFERENCES households(id),
    txn_date TEXT NOT NULL,
    currency TEXT NOT NULL REFERENCES currencies(code),
    description TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_txns_creator_date
    ON ledger_txns(created_by, txn_date);

CREATE INDEX IF NOT EXISTS idx_ledger_txns_household_date
    ON ledger_txns(household_id, txn_date);

CREATE TABLE IF NOT EXISTS ledger_splits (
    id TEXT PRIMARY KEY,
    txn_id TEXT NOT NULL REFERENCES ledger_txns(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    side TEXT NOT NULL CHECK (side IN ('DEBIT', 'CREDIT')),
    amount_minor BIGINT NOT NULL CHECK (amount_minor > 0),
    category_tag_id TEXT REFERENCES category_tags(id),
    UNIQUE (txn_id, position)
);

CREATE INDEX IF NOT EXISTS idx_ledger_splits_account
    ON ledger_splits(account_id);

CREATE INDEX IF NOT EXISTS idx_ledger_splits_category
    ON ledger_splits(category_tag_id);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.db.Exec(Schema); err != nil {
		return err
	}
	return nil
}
