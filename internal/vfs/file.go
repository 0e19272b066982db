// Package vfs holds the in-memory representation of a generated project's
// files. A FileSet is the unit everything else operates on: the resolver
// inlines from it, the history store snapshots it, the tree projector
// derives the navigation view from it. Sets are replaced wholesale, never
// mutated in place, so snapshots stay cheap and safe to share.
package vfs

import (
	"fmt"
	"strings"
)

// VirtualFile is a single project file: a posix-style relative path and
// its UTF-8 text content.
type VirtualFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FileSet is an ordered collection of virtual files. Paths are unique
// within a set; order is the author's order, not sorted.
type FileSet []VirtualFile

// PathError reports a path rejected at the edit boundary. It is the
// user-facing validation error for manual create/rename operations.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// ValidatePath checks that a path is acceptable for a virtual file:
// non-empty, relative, forward slashes, no empty or dot-dot segments,
// no control characters.
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Reason: "path is empty"}
	}
	if strings.ContainsRune(path, '\\') {
		return &PathError{Path: path, Reason: "backslashes are not allowed, use forward slashes"}
	}
	if strings.HasPrefix(path, "/") {
		return &PathError{Path: path, Reason: "path must be relative"}
	}
	if strings.HasSuffix(path, "/") {
		return &PathError{Path: path, Reason: "path must not end with a slash"}
	}
	for _, r := range path {
		if r < 0x20 || r == 0x7f {
			return &PathError{Path: path, Reason: "control characters are not allowed"}
		}
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return &PathError{Path: path, Reason: "empty path segment"}
		}
		if seg == ".." {
			return &PathError{Path: path, Reason: "'..' segments are not allowed"}
		}
	}
	return nil
}

// Validate checks every path in the set and that no path is duplicated.
func (fs FileSet) Validate() error {
	seen := make(map[string]bool, len(fs))
	for _, f := range fs {
		if err := ValidatePath(f.Path); err != nil {
			return err
		}
		if seen[f.Path] {
			return &PathError{Path: f.Path, Reason: "duplicate path"}
		}
		seen[f.Path] = true
	}
	return nil
}

// Get returns the file at path. When a path appears more than once
// (tolerated, see the tree projector) the last occurrence wins.
func (fs FileSet) Get(path string) (VirtualFile, bool) {
	for i := len(fs) - 1; i >= 0; i-- {
		if fs[i].Path == path {
			return fs[i], true
		}
	}
	return VirtualFile{}, false
}

// Contains reports whether a file exists at path.
func (fs FileSet) Contains(path string) bool {
	_, ok := fs.Get(path)
	return ok
}

// Paths returns the paths in set order.
func (fs FileSet) Paths() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Path
	}
	return out
}

// Clone returns an independent copy of the set.
func (fs FileSet) Clone() FileSet {
	out := make(FileSet, len(fs))
	copy(out, fs)
	return out
}

// WithFile returns a new set where path holds content, replacing an
// existing entry in place or appending a new one.
func (fs FileSet) WithFile(path, content string) FileSet {
	out := fs.Clone()
	for i := range out {
		if out[i].Path == path {
			out[i].Content = content
			return out
		}
	}
	return append(out, VirtualFile{Path: path, Content: content})
}

// Without returns a new set with the file at path removed. Removing a
// missing path is a no-op.
func (fs FileSet) Without(path string) FileSet {
	out := make(FileSet, 0, len(fs))
	for _, f := range fs {
		if f.Path != path {
			out = append(out, f)
		}
	}
	return out
}

// Renamed returns a new set with the file at oldPath moved to newPath.
// The new path is validated and must not collide with an existing file.
// References in other files (e.g. a <script src> in HTML) are left as
// literal text, never rewritten.
func (fs FileSet) Renamed(oldPath, newPath string) (FileSet, error) {
	if err := ValidatePath(newPath); err != nil {
		return nil, err
	}
	if !fs.Contains(oldPath) {
		return nil, &PathError{Path: oldPath, Reason: "no such file"}
	}
	if oldPath != newPath && fs.Contains(newPath) {
		return nil, &PathError{Path: newPath, Reason: "a file already exists at this path"}
	}
	out := fs.Clone()
	for i := range out {
		if out[i].Path == oldPath {
			out[i].Path = newPath
		}
	}
	return out, nil
}
