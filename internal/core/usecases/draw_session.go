package usecases

import (
	"context"
	"errors"
	"sync"

	"github.com/upt-maps/campusmap/internal/core/domain"
)

// ErrNotDrawing is returned when a point arrives while the session is idle.
// Clicks are only captured between Start and Stop.
var ErrNotDrawing = errors.New("session is not in drawing mode")

// DrawSession is the path-authoring state machine. It has two states, idle
// and drawing, and owns the draft: the ordered, unsaved points of the path
// currently being traced on the map.
//
// Every method runs to completion under the session lock; the state
// transitions match the browser tool exactly:
//
//	idle    --Start-->  drawing  (draft reset)
//	drawing --point-->  drawing  (append)
//	drawing --Stop-->   idle     (draft retained)
//	any     --Undo/Clear/Export--> same state
type DrawSession struct {
	mu       sync.Mutex
	id       string
	drawing  bool
	draft    domain.PointList
	store    *PathStore
	onChange func()
}

// NewDrawSession creates an idle session that exports into store.
func NewDrawSession(id string, store *PathStore) *DrawSession {
	return &DrawSession{id: id, store: store}
}

// ID returns the session identifier.
func (s *DrawSession) ID() string { return s.id }

// setOnChange registers the draft-changed callback. Used by the session
// manager to fan mutations out to the render bridge.
func (s *DrawSession) setOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Start switches to drawing mode and resets the draft. Calling Start while
// already drawing is a no-op; the draft in progress is kept.
func (s *DrawSession) Start() {
	s.mu.Lock()
	if s.drawing {
		s.mu.Unlock()
		return
	}
	s.drawing = true
	s.draft = nil
	s.mu.Unlock()
	s.changed()
}

// Stop switches back to idle. The draft is retained so a paused session can
// be resumed or exported later. No-op when already idle.
func (s *DrawSession) Stop() {
	s.mu.Lock()
	if !s.drawing {
		s.mu.Unlock()
		return
	}
	s.drawing = false
	s.mu.Unlock()
}

// AddPoint appends a clicked point to the draft. Points are validated at
// the point of entry: out-of-bounds coordinates are rejected, not stored.
func (s *DrawSession) AddPoint(p domain.GeoPoint) error {
	if !p.Valid() {
		return domain.ErrInvalidCoordinate
	}
	s.mu.Lock()
	if !s.drawing {
		s.mu.Unlock()
		return ErrNotDrawing
	}
	s.draft = append(s.draft, p)
	s.mu.Unlock()
	s.changed()
	return nil
}

// Undo removes the last draft point. Valid in any state; no-op on an empty
// draft.
func (s *DrawSession) Undo() {
	s.mu.Lock()
	if len(s.draft) == 0 {
		s.mu.Unlock()
		return
	}
	s.draft = s.draft[:len(s.draft)-1]
	s.mu.Unlock()
	s.changed()
}

// Clear empties the draft without touching the idle/drawing state.
func (s *DrawSession) Clear() {
	s.mu.Lock()
	s.draft = nil
	s.mu.Unlock()
	s.changed()
}

// Export promotes the draft into a saved path record. The draft is neither
// cleared nor is drawing stopped; whether to keep going is the author's
// call. An empty draft yields domain.ErrEmptyPath and the store is left
// untouched.
func (s *DrawSession) Export(ctx context.Context) (domain.PathRecord, error) {
	s.mu.Lock()
	if len(s.draft) == 0 {
		s.mu.Unlock()
		return domain.PathRecord{}, domain.ErrEmptyPath
	}
	points := s.draft.Clone()
	s.mu.Unlock()

	return s.store.Add(ctx, domain.PathRecord{
		Type:   domain.DefaultPathType,
		Points: points,
	})
}

// Draft returns a copy of the in-progress points.
func (s *DrawSession) Draft() domain.PointList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Drawing reports whether the session is capturing clicks.
func (s *DrawSession) Drawing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawing
}

func (s *DrawSession) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
