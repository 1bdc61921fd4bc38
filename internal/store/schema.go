package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS subscriptions (
    id           TEXT PRIMARY KEY,
    position     INTEGER NOT NULL,
    name         TEXT NOT NULL,
    price        REAL NOT NULL,
    currency     TEXT NOT NULL,
    cycle        TEXT NOT NULL,
    start_day    INTEGER NOT NULL,
    end_day      INTEGER,
    color        TEXT NOT NULL DEFAULT '',
    link         TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS preferences (
    key          TEXT PRIMARY KEY,
    value        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key          TEXT PRIMARY KEY,
    value        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_position ON subscriptions(position);
`

const bumpVersionSQL = `INSERT INTO meta (key, value) VALUES ('version', 1)
	ON CONFLICT(key) DO UPDATE SET value = value + 1`
