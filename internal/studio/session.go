// Package studio runs live editing sessions: one per open project, wiring
// the version history, the preview controller and the apply engine behind
// a single websocket. All mutation flows through the session so the apply
// mutual exclusion and stale-callback rules hold in one place.
package studio

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/ashwanth2007/TheVibeCoders/internal/apply"
	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
	"github.com/ashwanth2007/TheVibeCoders/internal/history"
	"github.com/ashwanth2007/TheVibeCoders/internal/preview"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// ErrBusy is returned when a generate request arrives while a previous
// generation or apply is still in flight for the same session.
var ErrBusy = errors.New("a generation is already in progress")

// serverMessage is the outgoing websocket frame. Exactly one payload field
// is set per frame, keyed by Type.
type serverMessage struct {
	Type         string            `json:"type"`
	Apply        *apply.Event      `json:"apply,omitempty"`
	Preview      *preview.Event    `json:"preview,omitempty"`
	Plan         string            `json:"plan,omitempty"`
	SaveState    history.SaveState `json:"saveState,omitempty"`
	Path         string            `json:"path,omitempty"`
	DocID        string            `json:"docId,omitempty"`
	CurrentIndex int               `json:"currentIndex,omitempty"`
	Versions     int               `json:"versions,omitempty"`
	Busy         bool              `json:"busy,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Frame types sent to the studio UI.
const (
	frameApply      = "apply"
	framePreview    = "preview"
	framePlan       = "plan"
	frameState      = "state"
	frameGenerating = "generating"
	frameError      = "error"
)

// Session is one project's live editing session.
type Session struct {
	ProjectID string

	history *history.Store
	editor  *EditorBuffers
	preview *preview.Controller
	engine  *apply.Engine
	gen     *generate.Service

	mu         sync.Mutex
	generating bool
	generation string // token of the in-flight generation; stale callbacks no-op
	selected   string // outerHTML of the picked element, consumed by the next generation

	subMu sync.Mutex
	subs  map[chan serverMessage]struct{}
}

// NewSession wires a session from its parts. The log is the project's
// loaded history; persister mirrors mutations back to storage.
func NewSession(projectID string, logStore *history.Log, persister history.Persister, registry *preview.Registry, gen *generate.Service, opts apply.Options) *Session {
	s := &Session{
		ProjectID: projectID,
		history:   history.NewStore(projectID, logStore, persister),
		editor:    NewEditorBuffers(),
		gen:       gen,
		subs:      make(map[chan serverMessage]struct{}),
	}

	s.preview = preview.NewController(registry, s.onPreviewEvent)
	s.engine = apply.NewEngine(s.editor, committerFunc(s.commit), s.reloadPreview, s.onApplyEvent, opts)

	if files := s.history.CurrentFiles(); files != nil {
		s.editor.Load(files)
		s.preview.Render(files)
	}
	return s
}

// committerFunc adapts a function to apply.Committer.
type committerFunc func(ctx context.Context, files vfs.FileSet, prompt string) (history.Entry, error)

func (f committerFunc) Commit(ctx context.Context, files vfs.FileSet, prompt string) (history.Entry, error) {
	return f(ctx, files, prompt)
}

func (s *Session) commit(ctx context.Context, files vfs.FileSet, prompt string) (history.Entry, error) {
	entry, err := s.history.Append(ctx, files, prompt)
	s.broadcastState()
	return entry, err
}

func (s *Session) reloadPreview() {
	if files := s.history.CurrentFiles(); files != nil {
		s.editor.Load(files)
		s.preview.Render(files)
	}
}

func (s *Session) onApplyEvent(ev apply.Event) {
	s.broadcast(serverMessage{Type: frameApply, Apply: &ev})
}

func (s *Session) onPreviewEvent(ev preview.Event) {
	if ev.Type == preview.EventElementSelected && ev.Selected != nil {
		s.mu.Lock()
		s.selected = ev.Selected.HTML
		s.mu.Unlock()
	}
	s.broadcast(serverMessage{Type: framePreview, Preview: &ev})
}

// Attach subscribes a websocket connection to the session's frames and
// immediately sends the current state.
func (s *Session) Attach(ch chan serverMessage) {
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	s.send(ch, s.stateFrame())
}

// Detach unsubscribes a connection.
func (s *Session) Detach(ch chan serverMessage) {
	s.subMu.Lock()
	delete(s.subs, ch)
	s.subMu.Unlock()
}

func (s *Session) send(ch chan serverMessage, msg serverMessage) {
	select {
	case ch <- msg:
	default:
		// Slow consumer; dropping beats blocking the whole session.
		log.Printf("studio: dropping frame %q for project %s", msg.Type, s.ProjectID)
	}
}

func (s *Session) broadcast(msg serverMessage) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		s.send(ch, msg)
	}
}

func (s *Session) stateFrame() serverMessage {
	path, docID := s.preview.State()
	logRef := s.history.Log()
	return serverMessage{
		Type:         frameState,
		SaveState:    s.history.State(),
		Path:         path,
		DocID:        docID,
		CurrentIndex: logRef.CurrentIndex,
		Versions:     logRef.Len(),
		Busy:         s.Busy(),
	}
}

func (s *Session) broadcastState() {
	s.broadcast(s.stateFrame())
}

// Busy reports whether a generation or apply animation is in flight.
// Manual edits and history moves are refused while it is true.
func (s *Session) Busy() bool {
	s.mu.Lock()
	generating := s.generating
	s.mu.Unlock()
	return generating || s.engine.Active()
}

// Generate starts one generation for this session. The call returns
// immediately; progress and the outcome arrive as frames. Returns ErrBusy
// while a previous generation or apply is still running.
func (s *Session) Generate(instruction string, attachments []generate.Attachment) error {
	s.mu.Lock()
	if s.generating || s.engine.Active() {
		s.mu.Unlock()
		return ErrBusy
	}
	token := uuid.New().String()
	s.generating = true
	s.generation = token
	selected := s.selected
	s.mu.Unlock()

	s.broadcast(serverMessage{Type: frameGenerating, Busy: true})

	go s.runGeneration(token, generate.Request{
		Instruction:  instruction,
		CurrentFiles: s.history.CurrentFiles(),
		Attachments:  attachments,
		Selected:     selected,
	})
	return nil
}

func (s *Session) runGeneration(token string, req generate.Request) {
	resp, err := s.gen.Generate(context.Background(), req)

	s.mu.Lock()
	if s.generation != token {
		// A newer generation superseded this one, or it was cancelled
		// while the provider call was in flight. Its result must not
		// touch the session.
		s.mu.Unlock()
		return
	}
	s.generating = false
	if err == nil {
		// The selection context was consumed by this generation.
		s.selected = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.broadcast(serverMessage{Type: frameError, Error: err.Error()})
		s.broadcastState()
		return
	}

	s.broadcast(serverMessage{Type: framePlan, Plan: generate.RenderPlan(resp.Plan)})

	if _, err := s.engine.Begin(context.Background(), resp.Files, req.Instruction); err != nil {
		s.broadcast(serverMessage{Type: frameError, Error: err.Error()})
		s.broadcastState()
	}
}

// Cancel abandons the in-flight generation and apply animation, if any.
// Nothing is committed; history stays as it was.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.generating = false
	s.generation = "" // in-flight provider callbacks become stale
	s.mu.Unlock()
	s.engine.Cancel()
	s.broadcastState()
}

// ReplaceHistory swaps in a history reloaded from storage after an
// external write. The session's loaded log is stale at that point;
// committing over it would drop the externally persisted entry. Skipped
// while busy: the apply guard refuses external writes in that window, so
// a busy session cannot have missed one.
func (s *Session) ReplaceHistory(hist *history.Log) {
	if s.Busy() {
		log.Printf("studio: project %s: ignoring history reload mid-apply", s.ProjectID)
		return
	}
	s.history.ReplaceLog(hist)
	s.reloadPreview()
	s.broadcastState()
}

// SetSelectionMode arms or disarms one-shot element selection in the
// preview.
func (s *Session) SetSelectionMode(enabled bool) {
	s.preview.SetSelectionMode(enabled)
}

// HandleSandbox processes one raw message relayed from the preview iframe.
// Malformed or unknown messages are logged and dropped.
func (s *Session) HandleSandbox(data []byte) {
	msg, err := preview.ParseMessage(data)
	if err != nil {
		log.Printf("studio: project %s: %v", s.ProjectID, err)
		return
	}
	s.preview.HandleMessage(msg)
}

// Navigate switches the preview to another page of the rendered app.
func (s *Session) Navigate(path string) {
	s.preview.Navigate(path)
}

// historyMove runs one history operation, re-renders and reports. A
// persistence failure is surfaced but the in-memory move stands.
func (s *Session) historyMove(ctx context.Context, op func(context.Context) (history.Entry, error)) error {
	if s.Busy() {
		return ErrBusy
	}
	_, err := op(ctx)
	var pe *history.PersistenceError
	if err != nil && !errors.As(err, &pe) {
		return err
	}
	s.reloadPreview()
	if err != nil {
		s.broadcast(serverMessage{Type: frameError, Error: err.Error()})
	}
	s.broadcastState()
	return nil
}

// Undo moves the history cursor back one version.
func (s *Session) Undo(ctx context.Context) error {
	return s.historyMove(ctx, s.history.Undo)
}

// Redo moves the history cursor forward one version.
func (s *Session) Redo(ctx context.Context) error {
	return s.historyMove(ctx, s.history.Redo)
}

// Restore appends a copy of version i (zero-based) as a new version.
func (s *Session) Restore(ctx context.Context, i int) error {
	return s.historyMove(ctx, func(ctx context.Context) (history.Entry, error) {
		return s.history.Restore(ctx, i)
	})
}

// History exposes the session's history store for read-side consumers.
func (s *Session) History() *history.Store { return s.history }

// Editor exposes the session's editor model.
func (s *Session) Editor() *EditorBuffers { return s.editor }

// Close cancels any running work and releases the preview document.
func (s *Session) Close() {
	s.Cancel()
	s.preview.Close()
}
