package workspace

import (
	"sync"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffContext is the number of unchanged lines shown around each hunk.
const DiffContext = 3

// DryRun reads through to a base Files but never writes. Each Write is
// recorded as a unified diff against the current content instead.
type DryRun struct {
	Base Files

	mu    sync.Mutex
	diffs map[string]string
	order []string
}

// NewDryRun wraps base.
func NewDryRun(base Files) *DryRun {
	return &DryRun{Base: base, diffs: make(map[string]string)}
}

func (d *DryRun) Read(path string) ([]byte, error) {
	return d.Base.Read(path)
}

func (d *DryRun) Exists(path string) bool {
	return d.Base.Exists(path)
}

// Write records the diff between the file on disk and content.
func (d *DryRun) Write(path string, content []byte) error {
	var before []byte
	if d.Base.Exists(path) {
		b, err := d.Base.Read(path)
		if err != nil {
			return err
		}
		before = b
	}

	diff, err := UnifiedDiff(path, before, content)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, seen := d.diffs[path]; !seen {
		d.order = append(d.order, path)
	}
	d.diffs[path] = diff
	return nil
}

// Diff returns the recorded diff for path, empty when the write would not
// change the file or nothing was written.
func (d *DryRun) Diff(path string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.diffs[path]
}

// Paths returns the written paths in first-write order.
func (d *DryRun) Paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.order...)
}

// UnifiedDiff renders the change from before to after as a unified diff
// with a/ and b/ file headers.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  DiffContext,
	}
	return difflib.GetUnifiedDiffString(u)
}
