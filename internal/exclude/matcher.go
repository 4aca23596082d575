package exclude

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher answers whether a path under Root is excluded.
type Matcher struct {
	Root     string
	patterns []string
	auto     *AutoExcludeResult
}

// NewMatcher builds a matcher for root from glob patterns (doublestar
// syntax, matched against slash-separated paths relative to root). When
// autoDetect is set, dependency directories found by DetectAutoExcludes are
// excluded too.
func NewMatcher(root string, patterns []string, autoDetect bool) (*Matcher, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	m := &Matcher{Root: root, patterns: patterns}
	if autoDetect {
		m.auto = DetectAutoExcludes(root)
	}
	return m, nil
}

// AutoExcluded returns the auto-detected directories, if detection ran.
func (m *Matcher) AutoExcluded() *AutoExcludeResult {
	return m.auto
}

// SkipDir reports whether the walk should not descend into dir.
func (m *Matcher) SkipDir(dir string) bool {
	rel, ok := m.rel(dir)
	if !ok {
		return false
	}
	if rel == "." {
		return false
	}
	if isHidden(filepath.Base(dir)) {
		return true
	}
	if m.auto != nil && m.auto.covers(rel) {
		return true
	}
	return m.match(rel) || m.match(rel+"/")
}

// SkipFile reports whether the file at path is excluded.
func (m *Matcher) SkipFile(path string) bool {
	rel, ok := m.rel(path)
	if !ok {
		return false
	}
	if m.auto != nil && m.auto.covers(rel) {
		return true
	}
	return m.match(rel)
}

func (m *Matcher) match(rel string) bool {
	for _, pattern := range m.patterns {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
	}
	return false
}

func (m *Matcher) rel(path string) (string, bool) {
	rel, err := relSlash(m.Root, path)
	if err != nil {
		return "", false
	}
	return rel, true
}
