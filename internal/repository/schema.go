package repository

import "database/sql"

// schemaSQL creates the two tables this package owns if they do not already
// exist, mirroring original_source's `HedgeFundFlow`/`HedgeFundFlowRun`
// SQLAlchemy models but as plain SQL DDL — there is no migration framework
// in the source to port, only the two `CREATE TABLE` shapes
// `Base.metadata.create_all` would emit.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS flows (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	description TEXT,
	nodes       TEXT    NOT NULL,
	edges       TEXT    NOT NULL,
	viewport    TEXT,
	data        TEXT,
	is_template INTEGER NOT NULL DEFAULT 0,
	tags        TEXT,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME
);

CREATE TABLE IF NOT EXISTS flow_runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	flow_id       INTEGER NOT NULL,
	run_number    INTEGER NOT NULL,
	status        TEXT    NOT NULL DEFAULT 'IDLE',
	request_data  TEXT,
	results       TEXT,
	error_message TEXT,
	started_at    DATETIME,
	completed_at  DATETIME,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME,
	UNIQUE(flow_id, run_number)
);

CREATE INDEX IF NOT EXISTS idx_flow_runs_flow_id ON flow_runs(flow_id);
CREATE INDEX IF NOT EXISTS idx_flow_runs_status  ON flow_runs(flow_id, status);
`

// EnsureSchema applies schemaSQL. Safe to call on every process start.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}
