package studio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ashwanth2007/TheVibeCoders/internal/apply"
	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
	"github.com/ashwanth2007/TheVibeCoders/internal/preview"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
)

// Manager owns the live sessions, one per open project, and hands the
// REST layer its view of which projects are mid-apply.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	projects *project.Store
	registry *preview.Registry
	gen      *generate.Service
	opts     apply.Options
}

// NewManager creates a session manager over the given stores.
func NewManager(projects *project.Store, registry *preview.Registry, gen *generate.Service, opts apply.Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		projects: projects,
		registry: registry,
		gen:      gen,
		opts:     opts,
	}
}

// Session returns the live session for a project, creating it from the
// stored history on first access.
func (m *Manager) Session(ctx context.Context, projectID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[projectID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Load outside the lock; loading can be slow and must not block
	// unrelated sessions.
	p, err := m.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[projectID]; ok {
		return s, nil
	}
	s := NewSession(projectID, p.History, m.projects, m.registry, m.gen, m.opts)
	m.sessions[projectID] = s
	return s, nil
}

// ApplyActive reports whether a project's session is mid-generation or
// mid-apply. Implements project.ApplyGuard; projects with no live session
// are never busy.
func (m *Manager) ApplyActive(projectID string) bool {
	m.mu.Lock()
	s, ok := m.sessions[projectID]
	m.mu.Unlock()
	return ok && s.Busy()
}

// HistoryChanged reloads a live session's history after an external
// write (a manual REST edit). Implements project.ApplyGuard; projects
// with no open session need nothing.
func (m *Manager) HistoryChanged(ctx context.Context, projectID string) {
	m.mu.Lock()
	s, ok := m.sessions[projectID]
	m.mu.Unlock()
	if !ok {
		return
	}

	p, err := m.projects.Get(ctx, projectID)
	if err != nil {
		log.Printf("studio: reloading history for %s: %v", projectID, err)
		return
	}
	s.ReplaceHistory(p.History)
}

// Close shuts down one project's session, if live.
func (m *Manager) Close(projectID string) {
	m.mu.Lock()
	s, ok := m.sessions[projectID]
	delete(m.sessions, projectID)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll shuts down every live session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
