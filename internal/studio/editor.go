package studio

import (
	"sync"

	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// EditorBuffers is the server-side model of the code editor: one buffer
// per path plus the open path and the read-only flag. The apply engine
// types into it; its contents are the source of truth for what the editor
// shows, so an interrupted animation still leaves consistent state.
type EditorBuffers struct {
	mu       sync.Mutex
	open     string
	readOnly bool
	contents map[string]string
}

// NewEditorBuffers returns an empty editor model.
func NewEditorBuffers() *EditorBuffers {
	return &EditorBuffers{contents: make(map[string]string)}
}

// Load resets the buffers to a committed file set.
func (e *EditorBuffers) Load(files vfs.FileSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.contents = make(map[string]string, len(files))
	for _, f := range files {
		e.contents[f.Path] = f.Content
	}
	if _, ok := e.contents[e.open]; !ok {
		e.open = ""
	}
}

// Open focuses a buffer, creating it empty when the path is new.
func (e *EditorBuffers) Open(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.contents[path]; !ok {
		e.contents[path] = ""
	}
	e.open = path
}

// SetContent replaces a buffer's content, creating the buffer if needed.
func (e *EditorBuffers) SetContent(path, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.contents[path] = content
}

// SetReadOnly toggles user input on the editor surface.
func (e *EditorBuffers) SetReadOnly(readOnly bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.readOnly = readOnly
}

// ReadOnly reports whether user input is currently locked out.
func (e *EditorBuffers) ReadOnly() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readOnly
}

// Content returns a buffer's content.
func (e *EditorBuffers) Content(path string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	content, ok := e.contents[path]
	return content, ok
}

// OpenPath returns the focused path, empty when nothing is open.
func (e *EditorBuffers) OpenPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}
