package vfs

import (
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchesInclude returns true if the path matches any include pattern.
// An empty pattern list includes everything.
func MatchesInclude(filePath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(filePath, patterns)
}

// MatchesExclude returns true if the path matches any exclude pattern.
// An empty pattern list excludes nothing.
func MatchesExclude(filePath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(filePath, patterns)
}

// matchesAny checks the path against each glob pattern. doublestar gives
// ** support; a plain base-name match is tried as a fallback so patterns
// like "*.css" work at any depth.
func matchesAny(filePath string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, filePath); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, path.Base(filePath)); err == nil && ok {
			return true
		}
	}
	return false
}

// Filtered returns the subset of files matching the include patterns and
// not matching the exclude patterns, preserving set order.
func (fs FileSet) Filtered(include, exclude []string) FileSet {
	out := make(FileSet, 0, len(fs))
	for _, f := range fs {
		if !MatchesInclude(f.Path, include) {
			continue
		}
		if MatchesExclude(f.Path, exclude) {
			continue
		}
		out = append(out, f)
	}
	return out
}
