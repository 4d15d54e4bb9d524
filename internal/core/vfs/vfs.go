// Package vfs implements the FileReader contract: resolving include paths
// relative to the file that names them (or the process working directory
// for the root/stdin file) and reading file content, with an in-memory
// cache that can also be pre-seeded for files that only exist virtually
// (e.g. an LSP's unsaved buffer).
package vfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fpp-community/fppsema/internal/util/filepathutil"
)

// FileSystem resolves and reads FPP source files, caching content by
// absolute path so repeated reads within one analysis run are stable even
// if the underlying file changes on disk.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// New creates an empty FileSystem.
func New() *FileSystem {
	return &FileSystem{files: make(map[string][]byte)}
}

// Resolve turns an include path into an absolute path. An absolute path (or
// a file:// URI, accepted here for an editor integration that hands over
// unsaved-buffer paths as URIs) is cleaned and returned unchanged. A
// relative path is resolved against the directory of baseFile; when
// baseFile is empty (the root file came from stdin) it resolves against the
// process working directory.
func (fs *FileSystem) Resolve(baseFile, path string) string {
	if baseFile == "" {
		resolved, err := filepathutil.NormalizeFromWD(path)
		if err != nil {
			return filepath.Clean(filepathutil.FromURI(path))
		}
		return resolved
	}
	resolved, err := filepathutil.Normalize(baseFile, path)
	if err != nil {
		return filepath.Clean(filepathutil.FromURI(path))
	}
	return resolved
}

// ReadFile returns the content of the file at absPath, preferring a cached
// entry (disk or virtual) over a fresh read from disk.
func (fs *FileSystem) ReadFile(absPath string) ([]byte, error) {
	clean, err := filepath.Abs(absPath)
	if err != nil {
		clean = filepath.Clean(absPath)
	}

	fs.mu.RLock()
	cached, ok := fs.files[clean]
	fs.mu.RUnlock()
	if ok {
		return cached, nil
	}

	content, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", clean, err)
	}

	fs.mu.Lock()
	fs.files[clean] = content
	fs.mu.Unlock()

	return content, nil
}

// WriteFileCache seeds or overwrites the in-memory content for path without
// touching disk, for callers (tests, an editor integration) that hold
// content that has not been saved.
func (fs *FileSystem) WriteFileCache(path string, content []byte) {
	clean, err := filepath.Abs(path)
	if err != nil {
		clean = filepath.Clean(path)
	}
	fs.mu.Lock()
	fs.files[clean] = content
	fs.mu.Unlock()
}

// RemoveFileCache evicts path from the cache, so the next ReadFile falls
// back to disk. Reports whether an entry was present.
func (fs *FileSystem) RemoveFileCache(path string) bool {
	clean, err := filepath.Abs(path)
	if err != nil {
		clean = filepath.Clean(path)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[clean]; !ok {
		return false
	}
	delete(fs.files, clean)
	return true
}

// ResolveGlob expands a glob pattern (as accepted by a shell invocation of
// the CLI, e.g. "components/**/*.fpp") against the real filesystem rooted
// at dir, returning absolute paths in deterministic order.
func ResolveGlob(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(dir, m)
	}
	return out, nil
}

// IsDirectoryWildcard reports whether path names a wildcard that resolves
// to a directory rather than a single include target — include directives
// in FPP name a single file, so this is rejected early by the resolver.
func IsDirectoryWildcard(path string) bool {
	return doublestar.ContainsMagic(path)
}
