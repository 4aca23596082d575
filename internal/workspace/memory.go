package workspace

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
)

// Memory is an in-memory Files keyed by cleaned path. It records the order
// of writes.
type Memory struct {
	mu     sync.Mutex
	files  map[string][]byte
	writes []string
}

// NewMemory creates a Memory holding the given path to content entries.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string][]byte, len(files))}
	for path, content := range files {
		m.files[filepath.Clean(path)] = []byte(content)
	}
	return m
}

func (m *Memory) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), content...), nil
}

func (m *Memory) Write(path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.files[path] = append([]byte(nil), content...)
	m.writes = append(m.writes, path)
	return nil
}

func (m *Memory) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// Remove deletes path, so later reads fail.
func (m *Memory) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
}

// Content returns the current content of path, or a marker if it is absent.
func (m *Memory) Content(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return fmt.Sprintf("<missing %s>", path)
	}
	return string(content)
}

// Writes returns the written paths in write order, repeats included.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}
