// Package discovery resolves the extended context of a source file: the
// other files it depends on, found by asking the API for each file's
// dependency references and following them breadth-first.
//
// Traverse is the search itself and does no I/O of its own. Resolver binds
// it to the API client and the workspace.
package discovery

import (
	"context"
	"path/filepath"
)

// MaxDepth is the hard ceiling on discovery waves.
const MaxDepth = 16

// DefaultMaxSize is the default cap on resolved context files.
const DefaultMaxSize = 10

// Bounds limits a traversal. Zero values select the defaults; depth is
// never allowed above MaxDepth.
type Bounds struct {
	MaxDepth int
	MaxSize  int
}

func (b Bounds) depth() int {
	if b.MaxDepth <= 0 || b.MaxDepth > MaxDepth {
		return MaxDepth
	}
	return b.MaxDepth
}

func (b Bounds) size() int {
	if b.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return b.MaxSize
}

// DiscoverFunc returns the dependency references of the file at path, as
// written in that file (relative to its directory, or absolute).
type DiscoverFunc func(ctx context.Context, path string) ([]string, error)

// ExistsFunc reports whether path names an existing file.
type ExistsFunc func(path string) bool

// Traversal is the outcome of a breadth-first context search.
type Traversal struct {
	// Paths are the resolved files in resolution order, without the seed.
	Paths []string
	// Depth is the last wave that contributed a path; zero when nothing
	// was found.
	Depth int
	// Calls counts discovery invocations, the seed's included.
	Calls int
}

// wave tracks where the current breadth-first wave ends.
type wave struct {
	remaining int
	next      int
	depth     int
}

// Traverse runs a breadth-first search from seed. The seed is discovered
// first; each surviving reference becomes part of wave 1. Paths are dequeued
// in order and appended to the result, and while the current wave is below
// the depth bound and the result below the size cap, the dequeued file is
// discovered in turn and its new references form the next wave.
//
// References are normalized against the directory of the file that named
// them. References to missing files are dropped without counting toward
// the size cap, and no path (the seed included) is queued twice.
//
// Any discovery error aborts the search and is returned as is.
func Traverse(ctx context.Context, seed string, bounds Bounds, discover DiscoverFunc, exists ExistsFunc) (*Traversal, error) {
	maxDepth, maxSize := bounds.depth(), bounds.size()

	seed = filepath.Clean(seed)
	seen := map[string]bool{seed: true}
	result := &Traversal{}

	var queue []string
	enqueue := func(origin string, refs []string) int {
		added := 0
		for _, ref := range refs {
			path := normalize(origin, ref)
			if path == "" || seen[path] || !exists(path) {
				continue
			}
			seen[path] = true
			queue = append(queue, path)
			added++
		}
		return added
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	refs, err := discover(ctx, seed)
	result.Calls++
	if err != nil {
		return nil, err
	}

	w := wave{remaining: enqueue(seed, refs), depth: 1}
	if w.remaining == 0 {
		return result, nil
	}

	for len(queue) > 0 && len(result.Paths) < maxSize {
		path := queue[0]
		queue = queue[1:]
		result.Paths = append(result.Paths, path)
		result.Depth = w.depth

		if w.depth < maxDepth && len(result.Paths) < maxSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			refs, err := discover(ctx, path)
			result.Calls++
			if err != nil {
				return nil, err
			}
			w.next += enqueue(path, refs)
		}

		w.remaining--
		if w.remaining == 0 && w.next > 0 {
			w.depth++
			w.remaining, w.next = w.next, 0
		}
	}

	return result, nil
}

// normalize resolves ref against the directory of origin.
func normalize(origin, ref string) string {
	if ref == "" {
		return ""
	}
	ref = filepath.FromSlash(ref)
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(filepath.Dir(origin), ref)
}
