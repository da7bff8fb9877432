package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id           TEXT PRIMARY KEY,
    group_id     TEXT,
    created_by   TEXT NOT NULL,
    total_amount INTEGER NOT NULL CHECK (total_amount > 0),
    currency     TEXT NOT NULL,
    note         TEXT NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_expenses_group ON expenses (group_id, created_at);
CREATE INDEX IF NOT EXISTS idx_expenses_created_by ON expenses (created_by, created_at);

CREATE TABLE IF NOT EXISTS expense_shares (
    id           TEXT PRIMARY KEY,
    expense_id   TEXT NOT NULL REFERENCES expenses (id) ON DELETE CASCADE,
    user_id      TEXT NOT NULL,
    share_amount INTEGER NOT NULL CHECK (share_amount >= 0),
    paid_amount  INTEGER NOT NULL DEFAULT 0 CHECK (paid_amount >= 0 AND paid_amount <= share_amount),
    status       TEXT NOT NULL CHECK (status IN ('owed', 'settled')),
    created_at   INTEGER NOT NULL,
    UNIQUE (expense_id, user_id),
    CHECK ((status = 'settled') = (paid_amount = share_amount))
);

CREATE INDEX IF NOT EXISTS idx_expense_shares_user_status ON expense_shares (user_id, status);
CREATE INDEX IF NOT EXISTS idx_expense_shares_expense ON expense_shares (expense_id);

CREATE TABLE IF NOT EXISTS settlements (
    id             TEXT PRIMARY KEY,
    from_user_id   TEXT NOT NULL,
    to_user_id     TEXT NOT NULL CHECK (to_user_id <> from_user_id),
    amount         INTEGER NOT NULL CHECK (amount > 0),
    currency       TEXT NOT NULL,
    status         TEXT NOT NULL,
    payment_method TEXT NOT NULL,
    created_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_settlements_from ON settlements (from_user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_settlements_to ON settlements (to_user_id, created_at);

CREATE TABLE IF NOT EXISTS outbox_events (
    id             TEXT PRIMARY KEY,
    aggregate_id   TEXT NOT NULL,
    aggregate_type TEXT NOT NULL,
    event_type     TEXT NOT NULL,
    payload        TEXT NOT NULL,
    created_at     INTEGER NOT NULL,
    published_at   INTEGER,
    published      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_outbox_unpublished ON outbox_events (published, created_at);
`
