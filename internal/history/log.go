// Package history keeps the append-only, branch-free version log of a
// project's file sets. Undo and redo only move the cursor; any new edit
// made from a past state truncates the redo-future first, so the log stays
// strictly linear. Restores are additive: they append a fresh entry rather
// than rewinding, which keeps an auditable record that the restore
// happened and when.
package history

import (
	"fmt"
	"time"

	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// Entry is one immutable snapshot: the files, the prompt that produced
// them and the creation instant (unix milliseconds). The checksum is the
// file set fingerprint, used for cheap no-op detection.
type Entry struct {
	Files     vfs.FileSet `json:"files"`
	Prompt    string      `json:"prompt"`
	Timestamp int64       `json:"timestamp"`
	Checksum  string      `json:"checksum,omitempty"`
}

// Log is the linear history: entries plus a cursor. Invariant: whenever
// entries is non-empty, 0 <= CurrentIndex < len(Entries).
type Log struct {
	Entries      []Entry `json:"entries"`
	CurrentIndex int     `json:"currentIndex"`
}

// NewLog returns an empty log with the cursor parked at -1.
func NewLog() *Log {
	return &Log{CurrentIndex: -1}
}

// now is swapped in tests for deterministic timestamps.
var now = func() int64 { return time.Now().UnixMilli() }

// Append truncates any redo-future beyond the cursor, appends a snapshot
// of files and moves the cursor to it.
func (l *Log) Append(files vfs.FileSet, prompt string) Entry {
	entry := Entry{
		Files:     files.Clone(),
		Prompt:    prompt,
		Timestamp: now(),
		Checksum:  files.Fingerprint(),
	}
	l.Entries = append(l.Entries[:l.CurrentIndex+1], entry)
	l.CurrentIndex = len(l.Entries) - 1
	return entry
}

// Snapshot returns a copy that is safe to read or marshal while the
// original keeps mutating. Entries are immutable once appended, so
// copying the slice is enough.
func (l *Log) Snapshot() *Log {
	entries := make([]Entry, len(l.Entries))
	copy(entries, l.Entries)
	return &Log{Entries: entries, CurrentIndex: l.CurrentIndex}
}

// Current returns the entry at the cursor.
func (l *Log) Current() (Entry, bool) {
	if l.CurrentIndex < 0 || l.CurrentIndex >= len(l.Entries) {
		return Entry{}, false
	}
	return l.Entries[l.CurrentIndex], true
}

// CanUndo reports whether the cursor can move back.
func (l *Log) CanUndo() bool { return l.CurrentIndex > 0 }

// CanRedo reports whether the cursor can move forward.
func (l *Log) CanRedo() bool { return l.CurrentIndex+1 < len(l.Entries) }

// Undo moves the cursor back one entry without mutating entries.
func (l *Log) Undo() (Entry, error) {
	if !l.CanUndo() {
		return Entry{}, fmt.Errorf("nothing to undo")
	}
	l.CurrentIndex--
	return l.Entries[l.CurrentIndex], nil
}

// Redo moves the cursor forward one entry without mutating entries.
func (l *Log) Redo() (Entry, error) {
	if !l.CanRedo() {
		return Entry{}, fmt.Errorf("nothing to redo")
	}
	l.CurrentIndex++
	return l.Entries[l.CurrentIndex], nil
}

// Restore appends a new entry whose files equal entry i's files, with a
// synthesized prompt noting the restoration. It does not rewind the
// cursor; it truncates and appends like any other edit.
func (l *Log) Restore(i int) (Entry, error) {
	if i < 0 || i >= len(l.Entries) {
		return Entry{}, fmt.Errorf("restore index %d out of range [0,%d)", i, len(l.Entries))
	}
	return l.Append(l.Entries[i].Files, fmt.Sprintf("Restored to version %d", i+1)), nil
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.Entries) }
