package vfs

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint computes a deterministic content hash of the set. Paths are
// sorted before hashing so two sets with the same files in different order
// produce the same fingerprint. Each path and content is length-prefixed
// to keep the encoding unambiguous.
func (fs FileSet) Fingerprint() string {
	paths := fs.Paths()
	sort.Strings(paths)

	h := xxhash.New()
	var lenBuf [8]byte
	writeField := func(s string) {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.WriteString(s)
	}

	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		f, _ := fs.Get(p)
		writeField(f.Path)
		writeField(f.Content)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ContentHash computes the hash of a single file's content.
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
