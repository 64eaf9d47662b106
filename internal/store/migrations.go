package store

const schema = `
CREATE TABLE IF NOT EXISTS trend_snapshots (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword          TEXT NOT NULL,
    normalized       TEXT NOT NULL,
    platforms        TEXT NOT NULL DEFAULT '[]',
    platform_count   INTEGER NOT NULL DEFAULT 0,
    heat_by_platform TEXT NOT NULL DEFAULT '{}',
    heat_score       REAL NOT NULL DEFAULT 0,
    real_score       REAL NOT NULL DEFAULT 0,
    breakdown        TEXT NOT NULL DEFAULT '{}',
    is_marketing     BOOLEAN NOT NULL DEFAULT 0,
    first_seen       DATETIME NOT NULL,
    last_seen        DATETIME NOT NULL,
    captured_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_normalized ON trend_snapshots(normalized);
CREATE INDEX IF NOT EXISTS idx_snapshots_captured ON trend_snapshots(captured_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_real_score ON trend_snapshots(real_score);

CREATE TABLE IF NOT EXISTS archive_days (
    date       TEXT PRIMARY KEY,
    payload    TEXT NOT NULL DEFAULT '[]',
    fetched_at DATETIME NOT NULL
);
`
