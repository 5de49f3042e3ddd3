package usecases

import (
	"sync"

	"github.com/upt-maps/campusmap/internal/core/domain"
)

// DefaultSessionID names the session used when a client does not pick one.
const DefaultSessionID = "default"

// SessionManager hands out draw sessions by id so independent tabs (or
// tests) each get their own controller instance over the shared store.
type SessionManager struct {
	mu          sync.Mutex
	store       *PathStore
	sessions    map[string]*DrawSession
	subscribers []func(sessionID string, draft domain.PointList)
}

// NewSessionManager creates an empty registry exporting into store.
func NewSessionManager(store *PathStore) *SessionManager {
	return &SessionManager{
		store:    store,
		sessions: make(map[string]*DrawSession),
	}
}

// Session returns the session with the given id, creating it on first use.
// An empty id maps to DefaultSessionID.
func (m *SessionManager) Session(id string) *DrawSession {
	if id == "" {
		id = DefaultSessionID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := NewDrawSession(id, m.store)
	s.setOnChange(func() { m.draftChanged(s) })
	m.sessions[id] = s
	return s
}

// Drafts returns a snapshot of every session's in-progress points,
// keyed by session id. Empty drafts are omitted.
func (m *SessionManager) Drafts() map[string]domain.PointList {
	m.mu.Lock()
	sessions := make([]*DrawSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	out := make(map[string]domain.PointList)
	for _, s := range sessions {
		if draft := s.Draft(); len(draft) > 0 {
			out[s.ID()] = draft
		}
	}
	return out
}

// Subscribe registers a callback invoked after any session's draft changes.
func (m *SessionManager) Subscribe(fn func(sessionID string, draft domain.PointList)) {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
}

func (m *SessionManager) draftChanged(s *DrawSession) {
	m.mu.Lock()
	subs := make([]func(string, domain.PointList), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	draft := s.Draft()
	for _, fn := range subs {
		fn(s.ID(), draft)
	}
}
