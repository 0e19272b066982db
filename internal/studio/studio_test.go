package studio

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashwanth2007/TheVibeCoders/internal/apply"
	"github.com/ashwanth2007/TheVibeCoders/internal/db"
	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
	"github.com/ashwanth2007/TheVibeCoders/internal/history"
	"github.com/ashwanth2007/TheVibeCoders/internal/llm"
	"github.com/ashwanth2007/TheVibeCoders/internal/preview"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// fakeProvider returns canned completions, optionally blocking until
// released so tests can hold a generation in flight.
type fakeProvider struct {
	mu      sync.Mutex
	content string
	err     error
	release chan struct{}
	calls   int
	lastReq llm.CompletionRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	release := f.release
	content, err := f.content, f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content}, nil
}

func generationJSON(plan string, files vfs.FileSet) string {
	resp := map[string]any{"plan": plan, "files": files}
	data, _ := json.Marshal(resp)
	return string(data)
}

func fastOptions() apply.Options {
	return apply.Options{
		BaseDuration:    time.Millisecond,
		PerRune:         0,
		MaxFileDuration: 5 * time.Millisecond,
		Tick:            time.Millisecond,
		CommitDebounce:  time.Millisecond,
	}
}

func newTestSession(t *testing.T, provider *fakeProvider) (*Session, *project.Store, string) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := project.NewStore(database)
	p, err := store.Create(context.Background(), "app", "build an app")
	if err != nil {
		t.Fatalf("creating project: %v", err)
	}

	gen := generate.NewService(provider, "fake-model")
	s := NewSession(p.ID, p.History, store, preview.NewRegistry(), gen, fastOptions())
	t.Cleanup(s.Close)
	return s, store, p.ID
}

// drainUntil reads frames until pred matches or the deadline passes.
func drainUntil(t *testing.T, frames chan serverMessage, pred func(serverMessage) bool) serverMessage {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-frames:
			if pred(msg) {
				return msg
			}
		case <-deadline:
			t.Fatal("timed out waiting for frame")
		}
	}
}

func TestGenerateAppliesAndCommits(t *testing.T) {
	target := vfs.FileSet{
		{Path: "index.html", Content: "<html><body>hi</body></html>"},
		{Path: "style.css", Content: "body{}"},
	}
	provider := &fakeProvider{content: generationJSON("built a page", target)}
	s, store, projectID := newTestSession(t, provider)

	frames := make(chan serverMessage, 256)
	s.Attach(frames)
	defer s.Detach(frames)

	if err := s.Generate("make a page", nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	drainUntil(t, frames, func(m serverMessage) bool { return m.Type == framePlan })
	committed := drainUntil(t, frames, func(m serverMessage) bool {
		return m.Type == frameApply && m.Apply.Type == apply.EventCommitted
	})
	if committed.Apply.Entry == nil || len(committed.Apply.Entry.Files) != 2 {
		t.Fatalf("committed entry = %+v", committed.Apply.Entry)
	}

	// The preview rendered the committed app.
	drainUntil(t, frames, func(m serverMessage) bool {
		return m.Type == framePreview && m.Preview.Type == preview.EventRendered
	})

	// The commit is durable.
	stored, err := store.Get(context.Background(), projectID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.History.Len() != 1 {
		t.Fatalf("persisted versions = %d, want 1", stored.History.Len())
	}
	if got := stored.History.Entries[0].Prompt; got != "make a page" {
		t.Errorf("prompt = %q", got)
	}

	// The editor holds the typed content and is writable again.
	waitFor(t, func() bool { return !s.Editor().ReadOnly() })
	if content, _ := s.Editor().Content("index.html"); content != target[0].Content {
		t.Errorf("editor content = %q", content)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestGenerateRejectsConcurrent(t *testing.T) {
	release := make(chan struct{})
	provider := &fakeProvider{
		content: generationJSON("p", vfs.FileSet{{Path: "index.html", Content: "x"}}),
		release: release,
	}
	s, _, _ := newTestSession(t, provider)

	if err := s.Generate("first", nil); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if err := s.Generate("second", nil); err != ErrBusy {
		t.Fatalf("second Generate err = %v, want ErrBusy", err)
	}
	close(release)
	waitFor(t, func() bool { return !s.Busy() })
}

func TestCancelledGenerationResultIsDropped(t *testing.T) {
	release := make(chan struct{})
	provider := &fakeProvider{
		content: generationJSON("p", vfs.FileSet{{Path: "index.html", Content: "x"}}),
		release: release,
	}
	s, store, projectID := newTestSession(t, provider)

	if err := s.Generate("first", nil); err != nil {
		t.Fatal(err)
	}
	s.Cancel()
	close(release) // provider responds after cancellation

	// The stale result must not start an apply or commit anything.
	time.Sleep(20 * time.Millisecond)
	if s.Busy() {
		t.Error("session busy after cancel")
	}
	stored, _ := store.Get(context.Background(), projectID)
	if stored.History.Len() != 0 {
		t.Errorf("versions = %d, want 0", stored.History.Len())
	}
}

func TestGenerationErrorLeavesHistoryUntouched(t *testing.T) {
	provider := &fakeProvider{content: `{"plan":"no files here"}`}
	s, store, projectID := newTestSession(t, provider)

	frames := make(chan serverMessage, 64)
	s.Attach(frames)
	defer s.Detach(frames)

	if err := s.Generate("make a page", nil); err != nil {
		t.Fatal(err)
	}

	errFrame := drainUntil(t, frames, func(m serverMessage) bool { return m.Type == frameError })
	if errFrame.Error == "" {
		t.Error("empty error message")
	}

	stored, _ := store.Get(context.Background(), projectID)
	if stored.History.Len() != 0 {
		t.Errorf("versions = %d, want 0", stored.History.Len())
	}
	if s.Busy() {
		t.Error("session still busy after failed generation")
	}
}

func TestSelectedElementConsumedByNextGeneration(t *testing.T) {
	provider := &fakeProvider{
		content: generationJSON("p", vfs.FileSet{{Path: "index.html", Content: "<button>Go</button>"}}),
	}
	s, _, _ := newTestSession(t, provider)

	frames := make(chan serverMessage, 256)
	s.Attach(frames)
	defer s.Detach(frames)

	if err := s.Generate("make a button", nil); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return !s.Busy() })

	// Arm selection and relay a capture from the sandbox.
	s.SetSelectionMode(true)
	capture, _ := json.Marshal(preview.SandboxMessage{
		Type:    preview.MsgElementSelected,
		Payload: &preview.SelectionPayload{Selector: "button:nth-of-type(1)", HTML: "<button>Go</button>"},
	})
	s.HandleSandbox(capture)

	drainUntil(t, frames, func(m serverMessage) bool {
		return m.Type == framePreview && m.Preview.Type == preview.EventElementSelected
	})

	if err := s.Generate("make it red", nil); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return !s.Busy() })

	provider.mu.Lock()
	second := provider.lastReq
	provider.mu.Unlock()
	found := false
	for _, m := range second.Messages {
		if m.Role == llm.RoleUser && containsAll(m.Content, "<button>Go</button>", "make it red") {
			found = true
		}
	}
	if !found {
		t.Error("second generation request lacks the selected element context")
	}

	// A third generation must not carry the stale selection.
	if err := s.Generate("add a footer", nil); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return !s.Busy() })
	provider.mu.Lock()
	third := provider.lastReq
	provider.mu.Unlock()
	for _, m := range third.Messages {
		if m.Role == llm.RoleUser && containsAll(m.Content, "selected this element") {
			t.Error("third generation request still carries the consumed selection")
		}
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestHistoryMovesReloadPreviewAndEditor(t *testing.T) {
	provider := &fakeProvider{}
	s, _, _ := newTestSession(t, provider)

	ctx := context.Background()
	if _, err := s.History().Append(ctx, vfs.FileSet{{Path: "index.html", Content: "v1"}}, "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.History().Append(ctx, vfs.FileSet{{Path: "index.html", Content: "v2"}}, "two"); err != nil {
		t.Fatal(err)
	}
	s.reloadPreview()

	if err := s.Undo(ctx); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if content, _ := s.Editor().Content("index.html"); content != "v1" {
		t.Errorf("editor after undo = %q", content)
	}

	if err := s.Redo(ctx); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if content, _ := s.Editor().Content("index.html"); content != "v2" {
		t.Errorf("editor after redo = %q", content)
	}

	if err := s.Restore(ctx, 0); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	logRef := s.History().Log()
	if logRef.Len() != 3 {
		t.Fatalf("versions after restore = %d, want 3", logRef.Len())
	}
	if got := logRef.Entries[2].Prompt; got != "Restored to version 1" {
		t.Errorf("restore prompt = %q", got)
	}
	if content, _ := s.Editor().Content("index.html"); content != "v1" {
		t.Errorf("editor after restore = %q", content)
	}
}

func TestManagerApplyGuard(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	store := project.NewStore(database)
	p, err := store.Create(context.Background(), "app", "")
	if err != nil {
		t.Fatal(err)
	}

	release := make(chan struct{})
	provider := &fakeProvider{
		content: generationJSON("p", vfs.FileSet{{Path: "index.html", Content: "x"}}),
		release: release,
	}
	m := NewManager(store, preview.NewRegistry(), generate.NewService(provider, "fake-model"), fastOptions())
	defer m.CloseAll()

	if m.ApplyActive(p.ID) {
		t.Error("project busy before any session exists")
	}

	s, err := m.Session(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	again, err := m.Session(context.Background(), p.ID)
	if err != nil || again != s {
		t.Fatalf("second Session() = %p, %v; want the same session", again, err)
	}

	if err := s.Generate("go", nil); err != nil {
		t.Fatal(err)
	}
	if !m.ApplyActive(p.ID) {
		t.Error("ApplyActive = false during generation")
	}
	close(release)
	waitFor(t, func() bool { return !m.ApplyActive(p.ID) })

	if _, err := m.Session(context.Background(), "missing"); err == nil {
		t.Error("Session for unknown project succeeded")
	}
}

func TestExternalEditSurvivesNextCommit(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	store := project.NewStore(database)
	ctx := context.Background()
	p, err := store.Create(ctx, "app", "")
	if err != nil {
		t.Fatal(err)
	}

	provider := &fakeProvider{
		content: generationJSON("p", vfs.FileSet{{Path: "index.html", Content: "<h1>hi</h1>"}}),
	}
	m := NewManager(store, preview.NewRegistry(), generate.NewService(provider, "fake-model"), fastOptions())
	defer m.CloseAll()

	s, err := m.Session(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	// A manual REST edit runs its own load-append-save cycle against
	// storage, then notifies the manager.
	loaded, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	loaded.History.Append(vfs.FileSet{{Path: "notes.txt", Content: "keep me"}}, "Manual edit of notes.txt")
	if err := store.SaveHistory(ctx, p.ID, loaded.History); err != nil {
		t.Fatal(err)
	}
	m.HistoryChanged(ctx, p.ID)

	frames := make(chan serverMessage, 256)
	s.Attach(frames)
	defer s.Detach(frames)

	if err := s.Generate("make a page", nil); err != nil {
		t.Fatal(err)
	}
	drainUntil(t, frames, func(msg serverMessage) bool {
		return msg.Type == frameApply && msg.Apply.Type == apply.EventCommitted
	})

	// The session committed on top of the manual edit, not over it.
	stored, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.History.Len() != 2 {
		t.Fatalf("persisted versions = %d, want 2 (manual edit then AI edit)", stored.History.Len())
	}
	if got := stored.History.Entries[0].Prompt; got != "Manual edit of notes.txt" {
		t.Errorf("first prompt = %q", got)
	}
	if got := stored.History.Entries[1].Prompt; got != "make a page" {
		t.Errorf("second prompt = %q", got)
	}
}

func TestBusyBlocksHistoryMoves(t *testing.T) {
	release := make(chan struct{})
	provider := &fakeProvider{
		content: generationJSON("p", vfs.FileSet{{Path: "index.html", Content: "x"}}),
		release: release,
	}
	s, _, _ := newTestSession(t, provider)

	if _, err := s.History().Append(context.Background(), vfs.FileSet{{Path: "index.html", Content: "v1"}}, "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.History().Append(context.Background(), vfs.FileSet{{Path: "index.html", Content: "v2"}}, "two"); err != nil {
		t.Fatal(err)
	}

	if err := s.Generate("go", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Undo(context.Background()); err != ErrBusy {
		t.Errorf("Undo during generation = %v, want ErrBusy", err)
	}
	close(release)
	waitFor(t, func() bool { return !s.Busy() })
}

func TestStateFrameShape(t *testing.T) {
	provider := &fakeProvider{}
	s, _, _ := newTestSession(t, provider)

	if _, err := s.History().Append(context.Background(), vfs.FileSet{{Path: "index.html", Content: "v1"}}, "one"); err != nil {
		t.Fatal(err)
	}
	s.reloadPreview()

	frame := s.stateFrame()
	if frame.Type != frameState {
		t.Errorf("type = %q", frame.Type)
	}
	if frame.Versions != 1 || frame.CurrentIndex != 0 {
		t.Errorf("frame = %+v", frame)
	}
	if frame.SaveState != history.StateSaved {
		t.Errorf("saveState = %q", frame.SaveState)
	}
	if frame.DocID == "" || frame.Path != "index.html" {
		t.Errorf("preview state = %q %q", frame.Path, frame.DocID)
	}
}

func TestAttachSendsInitialState(t *testing.T) {
	provider := &fakeProvider{}
	s, _, _ := newTestSession(t, provider)

	frames := make(chan serverMessage, 8)
	s.Attach(frames)
	defer s.Detach(frames)

	select {
	case msg := <-frames:
		if msg.Type != frameState {
			t.Errorf("first frame type = %q, want %q", msg.Type, frameState)
		}
	default:
		t.Fatal("no initial frame sent on attach")
	}
}
