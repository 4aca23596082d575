// Package exclude decides which files a directory run skips: configured
// glob patterns, dependency directories detected from project markers, and
// hidden directories.
package exclude

import (
	"os"
	"path/filepath"
	"strings"
)

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude, slash-separated and relative to the root
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// marker ties a project file to the dependency directory it implies.
type marker struct {
	// dir is the sibling directory to exclude; empty means the marker's
	// own directory.
	dir string
	// witness must exist inside dir for the exclusion to apply; empty
	// means dir existing is enough.
	witness string
	reason  string
}

var markers = map[string]marker{
	"Cargo.toml":       {dir: "target", reason: "Rust build artifacts (Cargo.toml detected)"},
	"package.json":     {dir: "node_modules", reason: "Node.js dependencies (package.json detected)"},
	"go.mod":           {dir: "vendor", witness: "modules.txt", reason: "Go vendored dependencies (vendor/modules.txt detected)"},
	"composer.json":    {dir: "vendor", witness: "autoload.php", reason: "PHP Composer dependencies (vendor/autoload.php detected)"},
	"pom.xml":          {dir: "target", reason: "Maven build output (pom.xml detected)"},
	"build.gradle":     {dir: "build", reason: "Gradle build output (build.gradle detected)"},
	"build.gradle.kts": {dir: "build", reason: "Gradle build output (build.gradle.kts detected)"},
	"pyvenv.cfg":       {reason: "Python virtual environment (pyvenv.cfg detected)"},
}

// neverDescend are directory names the detector does not walk into.
var neverDescend = map[string]bool{
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	"build":        true,
	"__pycache__":  true,
}

// DetectAutoExcludes scans root for dependency directories that should be
// excluded. Detection only relies on marker files and the directories they
// imply actually existing, and it recurses into nested projects.
func DetectAutoExcludes(root string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			rel, relErr := relSlash(root, path)
			if relErr != nil {
				return nil
			}
			if result.covers(rel) || neverDescend[d.Name()] || isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		m, ok := markers[d.Name()]
		if !ok {
			return nil
		}

		parent := filepath.Dir(path)
		target := parent
		if m.dir != "" {
			target = filepath.Join(parent, m.dir)
			if !dirExists(target) {
				return nil
			}
			if m.witness != "" && !fileExists(filepath.Join(target, m.witness)) {
				return nil
			}
		}

		rel, relErr := relSlash(root, target)
		if relErr != nil || rel == "." {
			return nil
		}
		result.add(rel, m.reason)
		return nil
	})

	return result
}

func (r *AutoExcludeResult) add(dir, reason string) {
	if _, ok := r.Reasons[dir]; ok {
		return
	}
	r.Directories = append(r.Directories, dir)
	r.Reasons[dir] = reason
}

// covers reports whether rel is an excluded directory or inside one.
func (r *AutoExcludeResult) covers(rel string) bool {
	for _, dir := range r.Directories {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

func relSlash(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
