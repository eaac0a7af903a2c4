package store

// schemaVersion is bumped when derived tables change shape. User data
// (transactions, accounts, categories, payee_rules) never migrates
// destructively; only the derived tables are dropped and rebuilt.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT PRIMARY KEY,
    date                 TEXT NOT NULL,
    payee                TEXT NOT NULL,
    amount               TEXT NOT NULL,
    kind                 TEXT NOT NULL DEFAULT 'standard',
    category             TEXT,
    account              TEXT,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    name                 TEXT PRIMARY KEY,
    type                 TEXT NOT NULL DEFAULT 'asset',
    balance              TEXT NOT NULL DEFAULT '0',
    tracking_only        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
    name                 TEXT PRIMARY KEY,
    grp                  TEXT NOT NULL DEFAULT 'expense',
    budget               TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS monthly_account_totals (
    account              TEXT NOT NULL,
    month                TEXT NOT NULL,
    net                  TEXT NOT NULL,
    PRIMARY KEY (account, month)
);

CREATE TABLE IF NOT EXISTS import_files (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    imported_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS payee_rules (
    payee                TEXT PRIMARY KEY,
    category             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account);
`

// dropDerivedSQL clears the rebuildable tables on a schema version bump.
const dropDerivedSQL = `
DROP TABLE IF EXISTS monthly_account_totals;
DROP TABLE IF EXISTS import_files;
`
