package journal

// schemaSQL defines the SQLite schema for the journal database.
// Tables:
//   - runs: one row per command invocation
//   - file_results: per-file outcome of a run
//   - written_files: hash of the content last written to each file
const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command TEXT NOT NULL,
    path TEXT NOT NULL,
    mode TEXT NOT NULL DEFAULT '',
    started_at TEXT NOT NULL,
    finished_at TEXT,
    processed INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS file_results (
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    file_path TEXT NOT NULL,
    status TEXT NOT NULL,
    context_id TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT '',
    before_hash TEXT NOT NULL DEFAULT '',
    after_hash TEXT NOT NULL DEFAULT '',
    recorded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS written_files (
    file_path TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    written_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_file_results_run ON file_results(run_id);
`

// initSchema creates the database tables and indexes if they don't exist.
func (j *Journal) initSchema() error {
	_, err := j.db.Exec(schemaSQL)
	return err
}
