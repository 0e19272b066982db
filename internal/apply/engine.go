// Package apply animates AI-proposed changes into the code editor before
// committing them. Changes are typed file by file so the user can see what
// is happening, then committed atomically: either the whole target lands
// as one history entry or, on cancellation, nothing does. All timing is
// elapsed-time based, so very large files reveal faster per character and
// the total never balloons.
package apply

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashwanth2007/TheVibeCoders/internal/history"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// Phase names surfaced to the user as explicit sequential stages. Each has
// distinct failure and latency characteristics, so they are never
// collapsed into one spinner.
type Phase string

const (
	PhaseEditing   Phase = "editing"
	PhaseApplying  Phase = "applying"
	PhaseReloading Phase = "reloading"
)

// Event types emitted during an apply session.
const (
	EventFileStarted = "file_started"
	EventTyped       = "typed"
	EventFileDone    = "file_done"
	EventPhase       = "phase"
	EventCommitted   = "committed"
	EventError       = "error"
)

// Event is one progress report from a running session.
type Event struct {
	Type    string         `json:"type"`
	Path    string         `json:"path,omitempty"`
	Index   int            `json:"index,omitempty"`
	Total   int            `json:"total,omitempty"`
	Typed   int            `json:"typed,omitempty"`
	Length  int            `json:"length,omitempty"`
	Phase   Phase          `json:"phase,omitempty"`
	Entry   *history.Entry `json:"entry,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Editor is the editable surface the session types into. SetContent must
// update the backing store, not just a visual layer, so an interrupted
// animation leaves the editor internally consistent. Open must accept
// paths that do not exist yet; target files absent from the current set
// are logically created mid-animation.
type Editor interface {
	Open(path string)
	SetContent(path, content string)
	SetReadOnly(readOnly bool)
}

// Committer turns the fully-typed target into a durable history entry.
type Committer interface {
	Commit(ctx context.Context, files vfs.FileSet, prompt string) (history.Entry, error)
}

// Options tune the animation. Durations are fixed-plus-per-character with
// a cap, so animation time scales sub-linearly with content length.
type Options struct {
	BaseDuration    time.Duration // minimum reveal time per file
	PerRune         time.Duration // additional time per character
	MaxFileDuration time.Duration // hard cap per file
	Tick            time.Duration // interval between reveal steps
	CommitDebounce  time.Duration // pause between last file and commit
}

// DefaultOptions are the production timings.
func DefaultOptions() Options {
	return Options{
		BaseDuration:    350 * time.Millisecond,
		PerRune:         8 * time.Millisecond,
		MaxFileDuration: 4 * time.Second,
		Tick:            30 * time.Millisecond,
		CommitDebounce:  250 * time.Millisecond,
	}
}

// ErrApplyInProgress is returned when a second session is started while
// one is still in flight for the same project.
var ErrApplyInProgress = errors.New("an apply session is already in progress")

// Engine runs at most one apply session at a time for its project.
type Engine struct {
	mu        sync.Mutex
	opts      Options
	editor    Editor
	committer Committer
	onReload  func()
	onEvent   func(Event)
	current   *Session
}

// NewEngine wires an engine to its project's editor surface, committer and
// preview reload hook. Nil callbacks are tolerated.
func NewEngine(editor Editor, committer Committer, onReload func(), onEvent func(Event), opts Options) *Engine {
	if onReload == nil {
		onReload = func() {}
	}
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	return &Engine{
		opts:      opts,
		editor:    editor,
		committer: committer,
		onReload:  onReload,
		onEvent:   onEvent,
	}
}

// Active reports whether a session is in flight. Manual edits must be
// refused while this is true.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Begin starts an apply session for the target file set. It returns
// ErrApplyInProgress when one is already running; the host decides whether
// to reject or queue. The session runs on its own goroutine and reports
// through the engine's event callback.
func (e *Engine) Begin(ctx context.Context, target vfs.FileSet, prompt string) (*Session, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target file set: %w", err)
	}

	e.mu.Lock()
	if e.current != nil {
		e.mu.Unlock()
		return nil, ErrApplyInProgress
	}
	s := &Session{
		Token:  uuid.New().String(),
		engine: e,
		ctx:    ctx,
		target: target.Clone(),
		prompt: prompt,
		done:   make(chan struct{}),
	}
	e.current = s
	e.mu.Unlock()

	e.editor.SetReadOnly(true)
	s.finished.Add(1)
	go s.run()
	return s, nil
}

// Cancel abandons the in-flight session, if any. Outstanding animation
// ticks become no-ops; nothing is committed.
func (e *Engine) Cancel() {
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}

// clear releases the slot if s is still the active session.
func (e *Engine) clear(s *Session) {
	e.mu.Lock()
	if e.current == s {
		e.current = nil
	}
	e.mu.Unlock()
	e.editor.SetReadOnly(false)
}

// Session is one bounded animate-then-commit workflow, identified by its
// token. Any asynchronous step checks it is still the engine's active
// session before touching shared state; stale steps are silent no-ops.
type Session struct {
	Token  string
	engine *Engine
	ctx    context.Context
	target vfs.FileSet
	prompt string

	cancelOnce sync.Once
	done       chan struct{}

	finished sync.WaitGroup
}

// Cancel abandons the session. Safe to call more than once.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() { close(s.done) })
}

// Wait blocks until the session goroutine has fully stopped, whether it
// committed or was abandoned.
func (s *Session) Wait() {
	s.finished.Wait()
}

// alive reports whether the session may still mutate shared state.
func (s *Session) alive() bool {
	select {
	case <-s.done:
		return false
	default:
	}
	if s.ctx.Err() != nil {
		return false
	}
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return s.engine.current == s
}

// sleep waits for d unless the session is cancelled first.
func (s *Session) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return s.alive()
	case <-s.done:
		return false
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) emit(ev Event) {
	s.engine.onEvent(ev)
}

func (s *Session) run() {
	defer s.finished.Done()
	defer s.engine.clear(s)

	s.emit(Event{Type: EventPhase, Phase: PhaseEditing})

	total := len(s.target)
	for i, f := range s.target {
		if !s.alive() {
			return
		}
		s.engine.editor.Open(f.Path)
		s.emit(Event{Type: EventFileStarted, Path: f.Path, Index: i, Total: total})
		if !s.typeFile(f) {
			return
		}
		s.emit(Event{Type: EventFileDone, Path: f.Path, Index: i, Total: total})
	}

	if !s.sleep(s.engine.opts.CommitDebounce) {
		return
	}

	s.emit(Event{Type: EventPhase, Phase: PhaseApplying})
	entry, err := s.engine.committer.Commit(s.ctx, s.target.Clone(), s.prompt)
	if err != nil {
		var pe *history.PersistenceError
		if errors.As(err, &pe) {
			// The commit landed in memory; only durability failed. Report
			// it and keep going so the user still sees their app.
			s.emit(Event{Type: EventError, Message: pe.Error()})
		} else {
			s.emit(Event{Type: EventError, Message: fmt.Sprintf("commit failed: %v", err)})
			return
		}
	}

	// The commit is announced before the reload phase: the entry exists
	// the moment Commit returns, and listeners key off it.
	s.emit(Event{Type: EventCommitted, Entry: &entry})

	s.emit(Event{Type: EventPhase, Phase: PhaseReloading})
	s.engine.onReload()
}

// typeFile reveals one file's content from empty to full. Returns false
// when the session was cancelled mid-reveal.
func (s *Session) typeFile(f vfs.VirtualFile) bool {
	runes := []rune(f.Content)
	opts := s.engine.opts

	duration := opts.BaseDuration + time.Duration(len(runes))*opts.PerRune
	if opts.MaxFileDuration > 0 && duration > opts.MaxFileDuration {
		duration = opts.MaxFileDuration
	}

	start := time.Now()
	for {
		if !s.alive() {
			return false
		}

		frac := 1.0
		if elapsed := time.Since(start); duration > 0 && elapsed < duration {
			frac = float64(elapsed) / float64(duration)
		}
		n := int(frac * float64(len(runes)))
		if n > len(runes) {
			n = len(runes)
		}

		// Write-through: the editor's model holds the partial content, so
		// an interruption never leaves torn state visible elsewhere.
		s.engine.editor.SetContent(f.Path, string(runes[:n]))
		s.emit(Event{Type: EventTyped, Path: f.Path, Typed: n, Length: len(runes)})

		if frac >= 1 {
			return true
		}
		if !s.sleep(opts.Tick) {
			return false
		}
	}
}
