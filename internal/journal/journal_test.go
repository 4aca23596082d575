package journal

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func setupTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalOpenClose(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}

	if want := filepath.Join(dir, FileName); j.Path() != want {
		t.Errorf("path = %q, want %q", j.Path(), want)
	}

	if err := j.Close(); err != nil {
		t.Errorf("close: %v", err)
	}

	// Reopen existing database
	j, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	j.Close()
}

func TestRunLifecycle(t *testing.T) {
	j := setupTestJournal(t)

	id, err := j.BeginRun("process", "src", "code")
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}

	before := HashContent([]byte("old"))
	after := HashContent([]byte("new"))

	records := []FileRecord{
		{Path: "src/a.py", Status: StatusProcessed, ContextID: "ctx-1", BeforeHash: before, AfterHash: after},
		{Path: "src/b.py", Status: StatusFailed, Error: "boom"},
	}
	for _, rec := range records {
		if err := j.RecordFile(id, rec); err != nil {
			t.Fatalf("record file: %v", err)
		}
	}

	if err := j.FinishRun(id, 1, 1, 0); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	runs, err := j.Runs(10)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.Command != "process" || r.Path != "src" || r.Mode != "code" {
		t.Errorf("unexpected run %+v", r)
	}
	if r.Processed != 1 || r.Failed != 1 {
		t.Errorf("totals = %d/%d, want 1/1", r.Processed, r.Failed)
	}
	if r.FinishedAt.IsZero() || r.Duration() < 0 {
		t.Errorf("expected finished run, got %+v", r)
	}

	files, err := j.Files(id)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 file records, got %d", len(files))
	}
	if files[0].ContextID != "ctx-1" || files[0].AfterHash != after {
		t.Errorf("unexpected first record %+v", files[0])
	}
	if files[1].Status != StatusFailed || files[1].Error != "boom" {
		t.Errorf("unexpected second record %+v", files[1])
	}
}

func TestRunsNewestFirst(t *testing.T) {
	j := setupTestJournal(t)

	for _, cmd := range []string{"process", "predict", "watch"} {
		if _, err := j.BeginRun(cmd, ".", ""); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := j.Runs(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Command != "watch" || runs[1].Command != "predict" {
		t.Errorf("unexpected order: %s, %s", runs[0].Command, runs[1].Command)
	}
	if !runs[0].FinishedAt.IsZero() || runs[0].Duration() != 0 {
		t.Error("unfinished run should have no end time")
	}

	all, err := j.Runs(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs, got %d", len(all))
	}
}

func TestRunByID(t *testing.T) {
	j := setupTestJournal(t)

	id, err := j.BeginRun("generate", "src", "DOCUMENT")
	if err != nil {
		t.Fatal(err)
	}
	if err := j.FinishRun(id, 3, 1, 0); err != nil {
		t.Fatal(err)
	}

	r, err := j.Run(id)
	if err != nil {
		t.Fatal(err)
	}
	if r.Command != "generate" || r.Path != "src" || r.Mode != "DOCUMENT" {
		t.Errorf("unexpected run: %+v", r)
	}
	if r.Processed != 3 || r.Failed != 1 {
		t.Errorf("counts = %d/%d, want 3/1", r.Processed, r.Failed)
	}
	if r.FinishedAt.IsZero() {
		t.Error("finished run should have an end time")
	}

	if _, err := j.Run(id + 1); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing run: err = %v, want sql.ErrNoRows", err)
	}
}

func TestLastWrittenHash(t *testing.T) {
	j := setupTestJournal(t)

	if _, err := j.LastWrittenHash("a.go"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}

	id, err := j.BeginRun("process", "a.go", "code")
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("package a\n")
	if err := j.RecordFile(id, FileRecord{Path: "a.go", Status: StatusProcessed, AfterHash: HashContent(content)}); err != nil {
		t.Fatal(err)
	}

	own, err := j.IsOwnWrite("a.go", content)
	if err != nil {
		t.Fatal(err)
	}
	if !own {
		t.Error("expected content to be recognised as own write")
	}

	own, err = j.IsOwnWrite("a.go", []byte("package a // edited\n"))
	if err != nil {
		t.Fatal(err)
	}
	if own {
		t.Error("edited content is not an own write")
	}

	// Failed records never update the written hash
	if err := j.RecordFile(id, FileRecord{Path: "a.go", Status: StatusFailed, AfterHash: "ignored"}); err != nil {
		t.Fatal(err)
	}
	hash, err := j.LastWrittenHash("a.go")
	if err != nil {
		t.Fatal(err)
	}
	if hash != HashContent(content) {
		t.Errorf("hash changed by failed record")
	}
}

func TestClear(t *testing.T) {
	j := setupTestJournal(t)

	id, _ := j.BeginRun("process", ".", "code")
	_ = j.RecordFile(id, FileRecord{Path: "a.go", Status: StatusProcessed, AfterHash: "h"})

	if err := j.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	runs, err := j.Runs(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs after clear, got %d", len(runs))
	}
}

func TestIntegrity(t *testing.T) {
	j := setupTestJournal(t)

	if err := j.Integrity(); err != nil {
		t.Errorf("fresh journal: %v", err)
	}
}
