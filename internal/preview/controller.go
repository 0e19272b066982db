package preview

import (
	"log"
	"sync"

	"github.com/ashwanth2007/TheVibeCoders/internal/resolve"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// Controller drives one project's preview. It is server-authoritative: it
// holds the committed file set, the currently rendered entry path and the
// live document ID. Every render discards the prior execution context
// entirely; the contained script's state cannot survive unrelated
// file-set changes, so there is no incremental patching.
type Controller struct {
	mu        sync.Mutex
	registry  *Registry
	files     vfs.FileSet
	path      string // entry path of the rendered document; "" while Empty
	docID     string
	selecting bool
	onEvent   func(Event)
}

// NewController creates a controller backed by the given registry. The
// event callback receives render and selection events; a nil callback
// discards them.
func NewController(registry *Registry, onEvent func(Event)) *Controller {
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	return &Controller{registry: registry, onEvent: onEvent}
}

// Render replaces the controller's file set and renders the entry
// document. The first render starts at index.html; later renders keep the
// current path so a committed edit reloads the page the user is on.
func (c *Controller) Render(files vfs.FileSet) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.path
	if path == "" {
		path = resolve.DefaultEntry
	}
	return c.renderLocked(files, path)
}

// Navigate re-renders with a different entry path. An empty path means
// index.html. Navigating to the already-rendered path is a no-op.
func (c *Controller) Navigate(path string) {
	if path == "" {
		path = resolve.DefaultEntry
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.files == nil || path == c.path {
		return
	}
	c.renderLocked(c.files, path)
}

// Reload re-resolves and re-renders the current path from the current
// file set.
func (c *Controller) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.files == nil {
		return
	}
	path := c.path
	if path == "" {
		path = resolve.DefaultEntry
	}
	c.renderLocked(c.files, path)
}

// renderLocked resolves, swaps the registry document (releasing the prior
// reference) and emits a rendered event. Callers hold c.mu. Put comes
// before Release so a re-render of identical content keeps it alive.
func (c *Controller) renderLocked(files vfs.FileSet, path string) string {
	doc := resolve.Resolve(files, path)
	prev := c.docID
	c.files = files
	c.path = path
	c.docID = c.registry.Put(doc)
	if prev != "" {
		c.registry.Release(prev)
	}
	c.onEvent(Event{Type: EventRendered, Path: path, DocID: c.docID})
	return c.docID
}

// SetSelectionMode arms or disarms element selection. Selection is
// one-shot: the next captured element disarms it on both sides.
func (c *Controller) SetSelectionMode(enabled bool) {
	c.mu.Lock()
	c.selecting = enabled
	c.mu.Unlock()
}

// SelectionMode reports whether selection is currently armed.
func (c *Controller) SelectionMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selecting
}

// HandleMessage processes one message relayed from the sandbox. Unknown
// messages are logged and dropped; sandbox content must never be able to
// crash the host.
func (c *Controller) HandleMessage(msg SandboxMessage) {
	switch msg.Type {
	case MsgNavigate:
		c.Navigate(msg.Path)
	case MsgElementSelected:
		c.mu.Lock()
		if !c.selecting {
			// Stale or unsolicited capture; the mode already disarmed.
			c.mu.Unlock()
			return
		}
		c.selecting = false
		onEvent := c.onEvent
		c.mu.Unlock()
		onEvent(Event{Type: EventElementSelected, Selected: msg.Payload})
	default:
		log.Printf("preview: dropping unknown sandbox message type %q", msg.Type)
	}
}

// State returns the rendered entry path and document ID; both empty while
// the controller has no files.
func (c *Controller) State() (path, docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path, c.docID
}

// Close releases the controller's live document.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.docID != "" {
		c.registry.Release(c.docID)
		c.docID = ""
		c.path = ""
		c.files = nil
	}
}
