package watcher

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codemakerai/codemaker-cli/internal/journal"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// DefaultWriteCacheSize bounds how many recently written files are
// remembered for self-write suppression.
const DefaultWriteCacheSize = 1024

// Writes remembers the content hashes of files written on behalf of the
// watcher, so the save events those writes cause are not acted on again.
// Writes recorded by other runs are recognized through the journal.
type Writes struct {
	recent  *lru.Cache[string, string]
	journal *journal.Journal
}

// NewWrites creates a write tracker holding up to size entries. j may be
// nil.
func NewWrites(size int, j *journal.Journal) (*Writes, error) {
	if size <= 0 {
		size = DefaultWriteCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating write cache: %w", err)
	}
	return &Writes{recent: cache, journal: j}, nil
}

// Record notes that content is about to be written to path.
func (w *Writes) Record(path string, content []byte) {
	w.recent.Add(path, journal.HashContent(content))
}

// Own reports whether content is exactly what was last written to path by
// this process or, failing that, by any journaled run.
func (w *Writes) Own(path string, content []byte) (bool, error) {
	if hash, ok := w.recent.Get(path); ok && hash == journal.HashContent(content) {
		return true, nil
	}
	if w.journal == nil {
		return false, nil
	}
	return w.journal.IsOwnWrite(path, content)
}

// Files wraps base so every write through it is recorded.
func (w *Writes) Files(base workspace.Files) workspace.Files {
	return &trackedFiles{Files: base, writes: w}
}

type trackedFiles struct {
	workspace.Files
	writes *Writes
}

func (t *trackedFiles) Write(path string, content []byte) error {
	t.writes.Record(path, content)
	return t.Files.Write(path, content)
}
