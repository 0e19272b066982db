// Package preview owns the sandboxed rendering side of the studio: it
// turns committed file sets into resolved documents, hands them to the
// browser through a content-addressed registry, and speaks the message
// protocol the injected instrumentation uses (navigate / elementSelected).
package preview

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Registry holds resolved documents keyed by content hash, the server-side
// analog of a blob object URL. Each controller keeps exactly one live
// document and releases the previous one when superseded, so the registry
// never grows across repeated reloads.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]*document
}

// document is one registered page plus the number of controllers holding
// it. Content addressing means two controllers rendering identical output
// share an entry; the count keeps one controller's release from killing
// the other's live page.
type document struct {
	content string
	refs    int
}

// NewRegistry creates an empty document registry.
func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]*document)}
}

// Put stores a document and returns its ID, taking one reference. Storing
// the same content again yields the same ID with its count bumped.
func (r *Registry) Put(doc string) string {
	id := fmt.Sprintf("%016x", xxhash.Sum64String(doc))
	r.mu.Lock()
	if d, ok := r.docs[id]; ok {
		d.refs++
	} else {
		r.docs[id] = &document{content: doc, refs: 1}
	}
	r.mu.Unlock()
	return id
}

// Get returns the document for an ID.
func (r *Registry) Get(id string) (string, bool) {
	r.mu.RLock()
	d, ok := r.docs[id]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}
	return d.content, true
}

// Release drops one reference; the document disappears when the last
// holder lets go. Releasing an unknown ID is a no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	if d, ok := r.docs[id]; ok {
		d.refs--
		if d.refs <= 0 {
			delete(r.docs, id)
		}
	}
	r.mu.Unlock()
}

// Len reports how many documents are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
