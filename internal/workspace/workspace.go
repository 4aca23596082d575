// Package workspace reads and writes the user's source files.
//
// The processor only talks to the Files interface, so a run can be pointed
// at the real file system, at a dry-run recorder that produces diffs, or at
// an in-memory fake in tests.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Files is the file access a processing run needs.
type Files interface {
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
	Exists(path string) bool
}

// OS accesses the local file system. Writes replace the whole file through
// a temporary sibling and a rename, so an interrupted run never leaves a
// half-written source file behind.
type OS struct{}

// Read returns the content of path.
func (OS) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists reports whether path names an existing regular file.
func (OS) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Write replaces the content of path, keeping its permission bits.
func (OS) Write(path string, content []byte) error {
	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
