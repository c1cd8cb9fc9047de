// Package vault resolves document paths against a configured vault root.
// Callers may pass absolute paths or vault-relative ones; outputs that land
// under the root are reported vault-relative.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps between absolute and vault-relative paths and confines
// cabinet operations to the vault root.
type Resolver struct {
	root string
}

// NewResolver creates a resolver for the given vault root. The root does not
// need to exist yet; it may be created later by the first write.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, fmt.Errorf("vault root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}
	return &Resolver{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute vault root.
func (r *Resolver) Root() string {
	return r.root
}

// Abs resolves a path to absolute form. Relative paths are taken as
// vault-relative.
func (r *Resolver) Abs(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return filepath.Clean(abs), nil
}

// Rel maps an absolute path back to vault-relative form when it falls under
// the root. Paths outside the vault are returned unchanged, absolute.
func (r *Resolver) Rel(path string) string {
	abs, err := r.Abs(path)
	if err != nil {
		return path
	}
	if !r.Within(abs) {
		return abs
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// Within reports whether a path lies inside the vault root. Symlinked roots
// are compared by their resolved location as well, matching how the files
// are actually reached on disk.
func (r *Resolver) Within(path string) bool {
	abs, err := r.Abs(path)
	if err != nil {
		return false
	}
	if inside(abs, r.root) {
		return true
	}
	if real, err := filepath.EvalSymlinks(r.root); err == nil && real != r.root {
		return inside(abs, real)
	}
	return false
}

// Ensure validates that a path resolves inside the vault, returning the
// absolute form. Used before any cabinet write.
func (r *Resolver) Ensure(path string) (string, error) {
	abs, err := r.Abs(path)
	if err != nil {
		return "", err
	}
	if !r.Within(abs) {
		return "", fmt.Errorf("path is outside the vault: %s", path)
	}
	return abs, nil
}

// MkdirFor creates the parent directories of a path, as needed for sidecar
// and cabinet-copy writes.
func MkdirFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o750)
}

func inside(path, dir string) bool {
	if path == dir {
		return true
	}
	withSep := dir
	if !strings.HasSuffix(withSep, string(filepath.Separator)) {
		withSep += string(filepath.Separator)
	}
	return strings.HasPrefix(path, withSep)
}
