// Package export serializes a committed file set as a flat zip archive:
// one entry per path, content exactly as stored. Pure serialization, no
// resolution or rewriting.
package export

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// Archive writes the file set to w as a zip, honoring include/exclude
// glob patterns (doublestar syntax).
func Archive(w io.Writer, files vfs.FileSet, include, exclude []string) error {
	zw := zip.NewWriter(w)
	for _, f := range files.Filtered(include, exclude) {
		entry, err := zw.Create(f.Path)
		if err != nil {
			return fmt.Errorf("creating archive entry %s: %w", f.Path, err)
		}
		if _, err := entry.Write([]byte(f.Content)); err != nil {
			return fmt.Errorf("writing archive entry %s: %w", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}
