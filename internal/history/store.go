package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// SaveState is the durability indicator surfaced to the UI alongside the
// project. A failed persistence write falls back to unsaved with an error
// notice; it never silently claims saved.
type SaveState string

const (
	StateSaved   SaveState = "saved"
	StateUnsaved SaveState = "unsaved"
	StateSaving  SaveState = "saving"
)

// PersistenceError reports that a history mutation was applied in memory
// but could not be durably saved. It is surfaced distinctly from
// generation errors and is never swallowed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting history (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persister mirrors the log to the external store. The project package
// provides the SQLite-backed implementation.
type Persister interface {
	SaveHistory(ctx context.Context, projectID string, log *Log) error
}

// Store pairs one project's log with its persistence mirror. In-memory
// state is updated optimistically first; every mutation is then written
// through. The store never retries on its own.
type Store struct {
	mu        sync.Mutex
	projectID string
	log       *Log
	persister Persister
	state     SaveState
}

// NewStore wraps a log for the given project. A nil persister keeps the
// store purely in-memory (used by tests and the CLI wizard).
func NewStore(projectID string, log *Log, persister Persister) *Store {
	if log == nil {
		log = NewLog()
	}
	return &Store{projectID: projectID, log: log, persister: persister, state: StateSaved}
}

// Log returns a snapshot of the log for read-side consumers
// (projection, preview, serialization). Mutations on the snapshot never
// reach the store.
func (s *Store) Log() *Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Snapshot()
}

// ReplaceLog swaps the underlying log for one reloaded from storage
// after an external write. The replacement is already durable, so the
// state resets to saved.
func (s *Store) ReplaceLog(l *Log) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil {
		l = NewLog()
	}
	s.log = l
	s.state = StateSaved
}

// State returns the current durability indicator.
func (s *Store) State() SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentFiles returns the file set at the cursor, or nil for an empty log.
func (s *Store) CurrentFiles() vfs.FileSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.log.Current(); ok {
		return entry.Files
	}
	return nil
}

// Append commits a new snapshot and mirrors it. The returned entry is
// valid even when the error is a *PersistenceError: the in-memory state
// already reflects the change, only durability failed.
func (s *Store) Append(ctx context.Context, files vfs.FileSet, prompt string) (Entry, error) {
	s.mu.Lock()
	entry := s.log.Append(files, prompt)
	s.mu.Unlock()
	return entry, s.persist(ctx, "append")
}

// Undo moves the cursor back and mirrors the new cursor position.
func (s *Store) Undo(ctx context.Context) (Entry, error) {
	s.mu.Lock()
	entry, err := s.log.Undo()
	s.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}
	return entry, s.persist(ctx, "undo")
}

// Redo moves the cursor forward and mirrors the new cursor position.
func (s *Store) Redo(ctx context.Context) (Entry, error) {
	s.mu.Lock()
	entry, err := s.log.Redo()
	s.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}
	return entry, s.persist(ctx, "redo")
}

// Restore appends a copy of entry i as a new entry and mirrors it.
func (s *Store) Restore(ctx context.Context, i int) (Entry, error) {
	s.mu.Lock()
	entry, err := s.log.Restore(i)
	s.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}
	return entry, s.persist(ctx, "restore")
}

// persist writes the log through to the external store, tracking the
// saving -> saved/unsaved transition.
func (s *Store) persist(ctx context.Context, op string) error {
	if s.persister == nil {
		return nil
	}

	// Hand the persister a snapshot, not the live log; a concurrent
	// Append must not mutate entries mid-marshal.
	s.mu.Lock()
	s.state = StateSaving
	projectID := s.projectID
	snapshot := s.log.Snapshot()
	s.mu.Unlock()

	err := s.persister.SaveHistory(ctx, projectID, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateUnsaved
		return &PersistenceError{Op: op, Err: err}
	}
	s.state = StateSaved
	return nil
}
