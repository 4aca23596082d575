// Package journal keeps a SQLite record of processing runs in
// .codemaker/journal.db: which files each run touched, the outcome per file
// and content hashes before and after the write. The watcher also uses the
// last written hash to recognise its own writes.
package journal

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the journal database file inside the config directory.
const FileName = "journal.db"

// Journal manages the .codemaker/journal.db SQLite database.
type Journal struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the journal database in configDir.
// It initializes the schema if the database is new.
func Open(configDir string) (*Journal, error) {
	dbPath := filepath.Join(configDir, FileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	// WAL lets the watcher and a one-off command share the file
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	j := &Journal{db: db, dbPath: dbPath}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

// Clear removes all journal data.
func (j *Journal) Clear() error {
	_, err := j.db.Exec("DELETE FROM file_results; DELETE FROM runs; DELETE FROM written_files;")
	if err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	return nil
}

// Integrity runs SQLite's integrity check and returns its findings as an
// error when the database is damaged.
func (j *Journal) Integrity() error {
	var result string
	if err := j.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

// HashContent returns the hex SHA-256 of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
