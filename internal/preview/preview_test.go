package preview

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

func demoFiles() vfs.FileSet {
	return vfs.FileSet{
		{Path: "index.html", Content: `<html><body><a href="about.html">About</a></body></html>`},
		{Path: "about.html", Content: `<html><body><h1>About</h1></body></html>`},
	}
}

func TestRenderAndNavigate(t *testing.T) {
	reg := NewRegistry()
	var events []Event
	c := NewController(reg, func(e Event) { events = append(events, e) })

	docID := c.Render(demoFiles())
	if docID == "" {
		t.Fatal("Render returned empty doc ID")
	}
	if path, _ := c.State(); path != "index.html" {
		t.Errorf("rendered path = %q, want index.html", path)
	}
	if len(events) != 1 || events[0].Type != EventRendered {
		t.Fatalf("events = %+v, want one rendered event", events)
	}

	c.Navigate("about.html")
	path, aboutID := c.State()
	if path != "about.html" {
		t.Errorf("path after navigate = %q", path)
	}
	if aboutID == docID {
		t.Error("navigate did not produce a new document")
	}

	doc, ok := reg.Get(aboutID)
	if !ok {
		t.Fatal("navigated document missing from registry")
	}
	if !strings.Contains(doc, "<h1>About</h1>") {
		t.Error("navigated document has wrong content")
	}
}

func TestNavigateEmptyPathDefaultsToIndex(t *testing.T) {
	c := NewController(NewRegistry(), nil)
	c.Render(demoFiles())
	c.Navigate("about.html")
	c.HandleMessage(SandboxMessage{Type: MsgNavigate, Path: ""})
	if path, _ := c.State(); path != "index.html" {
		t.Errorf("path = %q, want index.html", path)
	}
}

func TestNavigateToMissingPageRendersDiagnostic(t *testing.T) {
	reg := NewRegistry()
	c := NewController(reg, nil)
	c.Render(vfs.FileSet{{Path: "index.html", Content: `<html><body><a href="contact.html">x</a></body></html>`}})

	c.HandleMessage(SandboxMessage{Type: MsgNavigate, Path: "contact.html"})
	_, docID := c.State()
	doc, _ := reg.Get(docID)
	if !strings.Contains(doc, "404") || !strings.Contains(doc, "contact.html") {
		t.Error("missing page did not render the diagnostic document")
	}
}

func TestRegistryReleasesSupersededDocuments(t *testing.T) {
	reg := NewRegistry()
	c := NewController(reg, nil)

	files := demoFiles()
	c.Render(files)
	for i := 0; i < 10; i++ {
		// Alternate content so every render produces a distinct document.
		files = files.WithFile("index.html", `<html><body>v`+strings.Repeat("x", i)+`</body></html>`)
		c.Render(files)
	}
	if reg.Len() != 1 {
		t.Errorf("registry holds %d documents after repeated renders, want 1", reg.Len())
	}

	c.Close()
	if reg.Len() != 0 {
		t.Errorf("registry holds %d documents after Close, want 0", reg.Len())
	}
}

func TestSharedDocumentSurvivesOtherControllerClose(t *testing.T) {
	reg := NewRegistry()
	a := NewController(reg, nil)
	b := NewController(reg, nil)

	files := demoFiles()
	idA := a.Render(files)
	idB := b.Render(files)
	if idA != idB {
		t.Fatalf("identical renders got distinct IDs: %q vs %q", idA, idB)
	}

	a.Close()
	if _, ok := reg.Get(idB); !ok {
		t.Fatal("closing one controller released the other's live document")
	}

	// Reloading identical content must not leak references.
	b.Reload()
	b.Close()
	if reg.Len() != 0 {
		t.Errorf("registry holds %d documents after both controllers closed, want 0", reg.Len())
	}
}

func TestReloadKeepsPathWithNewContent(t *testing.T) {
	reg := NewRegistry()
	c := NewController(reg, nil)
	c.Render(demoFiles())
	c.Navigate("about.html")

	updated := demoFiles().WithFile("about.html", `<html><body><h1>About v2</h1></body></html>`)
	c.Render(updated)
	path, docID := c.State()
	if path != "about.html" {
		t.Errorf("commit render moved path to %q", path)
	}
	doc, _ := reg.Get(docID)
	if !strings.Contains(doc, "About v2") {
		t.Error("reload did not pick up new content")
	}
}

func TestSelectionModeOneShot(t *testing.T) {
	var events []Event
	c := NewController(NewRegistry(), func(e Event) { events = append(events, e) })
	c.Render(demoFiles())
	events = nil

	c.SetSelectionMode(true)
	c.HandleMessage(SandboxMessage{Type: MsgElementSelected, Payload: &SelectionPayload{Selector: "#go", HTML: "<button id=\"go\"></button>"}})

	if c.SelectionMode() {
		t.Error("selection mode still armed after capture")
	}
	if len(events) != 1 || events[0].Type != EventElementSelected {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Selected.Selector != "#go" {
		t.Errorf("selector = %q", events[0].Selected.Selector)
	}

	// A second capture without re-arming is dropped.
	c.HandleMessage(SandboxMessage{Type: MsgElementSelected, Payload: &SelectionPayload{Selector: "#again", HTML: "<i></i>"}})
	if len(events) != 1 {
		t.Error("unsolicited selection was not dropped")
	}
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"navigate","path":"about.html"}`))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.Path != "about.html" {
		t.Errorf("path = %q", msg.Path)
	}

	if _, err := ParseMessage([]byte(`{"type":"evil"}`)); err == nil {
		t.Error("unknown message type accepted")
	}
	if _, err := ParseMessage([]byte(`{"type":"elementSelected"}`)); err == nil {
		t.Error("elementSelected without payload accepted")
	}
	if _, err := ParseMessage([]byte(`not json`)); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestPreviewRoute(t *testing.T) {
	reg := NewRegistry()
	id := reg.Put("<html><body>hello</body></html>")

	r := chi.NewRouter()
	RegisterRoutes(r, reg)

	req := httptest.NewRequest("GET", "/preview/"+id, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "sandbox") {
		t.Errorf("missing sandbox CSP, got %q", csp)
	}
	if !strings.Contains(w.Body.String(), "hello") {
		t.Error("wrong document body")
	}

	req = httptest.NewRequest("GET", "/preview/deadbeef00000000", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 404 {
		t.Errorf("released document status = %d, want 404", w.Code)
	}
}
