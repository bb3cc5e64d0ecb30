// Package history persists completed culture runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
-- Completed runs, one row each. The sampled series is stored as JSON;
-- listings read the summary columns only.
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    cell_line TEXT NOT NULL,
    initial_cells INTEGER NOT NULL,
    duration REAL NOT NULL,
    dt REAL NOT NULL,
    seed INTEGER NOT NULL,
    started_at TEXT NOT NULL,
    elapsed_ms INTEGER NOT NULL,
    snapshots INTEGER NOT NULL,
    final_total INTEGER NOT NULL,
    final_viable INTEGER NOT NULL,
    final_viability REAL NOT NULL,
    series TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_cell_line ON runs(cell_line);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the tables and records the schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)
	`, SchemaVersion, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
