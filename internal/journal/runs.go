package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status is the outcome of one file in a run.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run is one journaled command invocation.
type Run struct {
	ID         int64
	Command    string
	Path       string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Failed     int
	Skipped    int
}

// Duration returns how long the run took, zero if it never finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileRecord is the outcome for one file of a run.
type FileRecord struct {
	Path       string
	Status     Status
	ContextID  string
	Error      string
	BeforeHash string
	AfterHash  string
	RecordedAt time.Time
}

// BeginRun inserts a new run and returns its id.
func (j *Journal) BeginRun(command, path, mode string) (int64, error) {
	res, err := j.db.Exec(`
		INSERT INTO runs (command, path, mode, started_at)
		VALUES (?, ?, ?, ?)`,
		command, path, mode, formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	return res.LastInsertId()
}

// RecordFile stores the outcome for one file. For processed files with an
// after hash, the hash also becomes the file's last written content.
func (j *Journal) RecordFile(runID int64, rec FileRecord) error {
	now := formatTime(time.Now())

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO file_results (run_id, file_path, status, context_id, error, before_hash, after_hash, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Path, string(rec.Status), rec.ContextID, rec.Error, rec.BeforeHash, rec.AfterHash, now,
	)
	if err != nil {
		return fmt.Errorf("record file %s: %w", rec.Path, err)
	}

	if rec.Status == StatusProcessed && rec.AfterHash != "" {
		_, err = tx.Exec(`
			INSERT OR REPLACE INTO written_files (file_path, content_hash, written_at)
			VALUES (?, ?, ?)`,
			rec.Path, rec.AfterHash, now,
		)
		if err != nil {
			return fmt.Errorf("record write %s: %w", rec.Path, err)
		}
	}

	return tx.Commit()
}

// FinishRun stamps the run's end time and totals.
func (j *Journal) FinishRun(runID int64, processed, failed, skipped int) error {
	_, err := j.db.Exec(`
		UPDATE runs SET finished_at = ?, processed = ?, failed = ?, skipped = ?
		WHERE id = ?`,
		formatTime(time.Now()), processed, failed, skipped, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", runID, err)
	}
	return nil
}

// Runs returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (j *Journal) Runs(limit int) ([]Run, error) {
	query := `
		SELECT id, command, path, mode, started_at, COALESCE(finished_at, ''), processed, failed, skipped
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Command, &r.Path, &r.Mode, &started, &finished,
			&r.Processed, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = parseTime(started)
		if finished != "" {
			r.FinishedAt = parseTime(finished)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns the run with id. Returns sql.ErrNoRows if there is none.
func (j *Journal) Run(id int64) (*Run, error) {
	var r Run
	var started, finished string
	err := j.db.QueryRow(`
		SELECT id, command, path, mode, started_at, COALESCE(finished_at, ''), processed, failed, skipped
		FROM runs WHERE id = ?`, id).Scan(&r.ID, &r.Command, &r.Path, &r.Mode, &started, &finished,
		&r.Processed, &r.Failed, &r.Skipped)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	r.StartedAt = parseTime(started)
	if finished != "" {
		r.FinishedAt = parseTime(finished)
	}
	return &r, nil
}

// Files returns the per-file records of a run in recording order.
func (j *Journal) Files(runID int64) ([]FileRecord, error) {
	rows, err := j.db.Query(`
		SELECT file_path, status, context_id, error, before_hash, after_hash, recorded_at
		FROM file_results WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query file results: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		var status, recorded string
		if err := rows.Scan(&rec.Path, &status, &rec.ContextID, &rec.Error,
			&rec.BeforeHash, &rec.AfterHash, &recorded); err != nil {
			return nil, fmt.Errorf("scan file result: %w", err)
		}
		rec.Status = Status(status)
		rec.RecordedAt = parseTime(recorded)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LastWrittenHash returns the hash of the content last written to path.
// Returns sql.ErrNoRows if nothing was ever written there.
func (j *Journal) LastWrittenHash(path string) (string, error) {
	var hash string
	err := j.db.QueryRow("SELECT content_hash FROM written_files WHERE file_path = ?", path).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("get written hash %s: %w", path, err)
	}
	return hash, nil
}

// IsOwnWrite reports whether content is exactly what was last written to
// path.
func (j *Journal) IsOwnWrite(path string, content []byte) (bool, error) {
	hash, err := j.LastWrittenHash(path)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return hash == HashContent(content), nil
}
