// Package depresolver resolves a dependency token (bare library name or
// path) against a search-path list to an absolute, symlink-resolved
// path.
package depresolver

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultSystemPaths are the platform-default directories searched
// after RPATH/RUNPATH entries.
var DefaultSystemPaths = []string{
	"/usr/lib",
	"/usr/lib64",
	"/usr/local/lib",
	"/lib",
	"/lib64",
	"/System/Library/Frameworks",
}

// Resolver resolves dependency tokens to absolute paths.
type Resolver struct {
	// SystemPaths is searched last, after any RPATH/RUNPATH entries
	// supplied per-call. Defaults to DefaultSystemPaths.
	SystemPaths []string
}

// New returns a Resolver seeded with DefaultSystemPaths plus any caller
// additions.
func New(additional ...string) *Resolver {
	paths := append([]string(nil), DefaultSystemPaths...)
	paths = append(paths, additional...)
	return &Resolver{SystemPaths: paths}
}

// Resolve looks up token against, in order: the token itself if it is
// already absolute; rpath entries (RPATH/RUNPATH recorded in the
// referring binary); then r.SystemPaths. Symbolic links are followed and
// ".." segments normalised before the existence check. Returns ("",
// false) if nothing matched.
func (r *Resolver) Resolve(token string, rpath []string) (string, bool) {
	if filepath.IsAbs(token) {
		if p, ok := statCanonical(token); ok {
			return p, true
		}
		return "", false
	}

	for _, dir := range rpath {
		if p, ok := statCanonical(filepath.Join(dir, token)); ok {
			return p, true
		}
	}
	for _, dir := range r.SystemPaths {
		if p, ok := statCanonical(filepath.Join(dir, token)); ok {
			return p, true
		}
	}
	return "", false
}

// IsSystemPath reports whether an already-resolved absolute path lives
// under one of the configured system directories.
func (r *Resolver) IsSystemPath(resolved string) bool {
	for _, dir := range r.SystemPaths {
		if strings.HasPrefix(resolved, dir+string(filepath.Separator)) || resolved == dir {
			return true
		}
	}
	return false
}

func statCanonical(path string) (string, bool) {
	clean := filepath.Clean(path)
	resolved, err := filepath.EvalSymlinks(clean)
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(resolved); err != nil {
		return "", false
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", false
	}
	return abs, true
}
