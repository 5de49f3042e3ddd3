package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/core/usecases"
)

func newSession(t *testing.T) (*usecases.DrawSession, *usecases.PathStore) {
	t.Helper()
	store := usecases.NewPathStore(context.Background(), nil)
	return usecases.NewDrawSession("test", store), store
}

func TestDrawSession_StartStop(t *testing.T) {
	s, _ := newSession(t)

	if s.Drawing() {
		t.Fatal("new session must be idle")
	}

	s.Start()
	if !s.Drawing() {
		t.Fatal("expected drawing after Start")
	}

	// Start while drawing is a no-op and keeps the draft.
	if err := s.AddPoint(domain.GeoPoint{Lat: 45, Lon: 21}); err != nil {
		t.Fatalf("add point: %v", err)
	}
	s.Start()
	if len(s.Draft()) != 1 {
		t.Error("Start while drawing must not reset the draft")
	}

	s.Stop()
	if s.Drawing() {
		t.Fatal("expected idle after Stop")
	}
	s.Stop() // idempotent

	// The draft survives Stop so the session can be resumed or exported.
	if len(s.Draft()) != 1 {
		t.Error("draft must be retained across Stop")
	}

	// A fresh Start resets the draft.
	s.Start()
	if len(s.Draft()) != 0 {
		t.Error("Start from idle must reset the draft")
	}
}

func TestDrawSession_PointsRequireDrawing(t *testing.T) {
	s, _ := newSession(t)

	err := s.AddPoint(domain.GeoPoint{Lat: 45, Lon: 21})
	if !errors.Is(err, usecases.ErrNotDrawing) {
		t.Errorf("expected ErrNotDrawing, got %v", err)
	}
	if len(s.Draft()) != 0 {
		t.Error("idle session must not accept points")
	}
}

func TestDrawSession_RejectsInvalidCoordinate(t *testing.T) {
	s, _ := newSession(t)
	s.Start()

	err := s.AddPoint(domain.GeoPoint{Lat: 120, Lon: 21})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	if len(s.Draft()) != 0 {
		t.Error("out-of-bounds point must not be stored")
	}
}

func TestDrawSession_DraftLengthInvariant(t *testing.T) {
	// Draft length always equals accepted clicks minus undos minus clears,
	// clamped at zero.
	s, _ := newSession(t)

	s.Undo() // empty: no-op
	if len(s.Draft()) != 0 {
		t.Fatal("undo on empty draft must be a no-op")
	}

	s.Start()
	for i := 0; i < 5; i++ {
		if err := s.AddPoint(domain.GeoPoint{Lat: 45, Lon: 21 + float64(i)/10}); err != nil {
			t.Fatalf("add point %d: %v", i, err)
		}
	}
	s.Undo()
	s.Undo()
	if got := len(s.Draft()); got != 3 {
		t.Errorf("expected 3 points after 5 clicks and 2 undos, got %d", got)
	}

	s.Stop()
	s.Undo() // undo is valid while idle too
	if got := len(s.Draft()); got != 2 {
		t.Errorf("expected 2 points after idle undo, got %d", got)
	}

	s.Clear()
	if len(s.Draft()) != 0 {
		t.Error("clear must empty the draft")
	}
	if s.Drawing() {
		t.Error("clear must not change the idle/drawing state")
	}
}

func TestDrawSession_ExportEmptyDraft(t *testing.T) {
	s, store := newSession(t)

	_, err := s.Export(context.Background())
	if !errors.Is(err, domain.ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("failed export must leave the store unchanged")
	}
}

func TestDrawSession_ExportPromotesDraft(t *testing.T) {
	s, store := newSession(t)

	s.Start()
	_ = s.AddPoint(domain.GeoPoint{Lat: 45.0, Lon: 21.0})
	_ = s.AddPoint(domain.GeoPoint{Lat: 45.1, Lon: 21.1})

	rec, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected 1 stored record, got %d", store.Len())
	}
	if rec.Type != domain.DefaultPathType {
		t.Errorf("expected default type tag, got %q", rec.Type)
	}
	want := domain.PointList{{Lat: 45.0, Lon: 21.0}, {Lat: 45.1, Lon: 21.1}}
	for i, p := range want {
		if rec.Points[i] != p {
			t.Errorf("point %d: expected %v, got %v", i, p, rec.Points[i])
		}
	}

	// Export neither clears the draft nor stops drawing.
	if got := len(s.Draft()); got != 2 {
		t.Errorf("expected draft retained with 2 points, got %d", got)
	}
	if !s.Drawing() {
		t.Error("export must not stop the session")
	}

	// The stored record owns its own copy of the points.
	s.Undo()
	stored, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Points) != 2 {
		t.Error("mutating the draft after export leaked into the record")
	}
}

func TestDrawSession_ExportWhileIdle(t *testing.T) {
	s, store := newSession(t)

	s.Start()
	_ = s.AddPoint(domain.GeoPoint{Lat: 45, Lon: 21})
	s.Stop()

	if _, err := s.Export(context.Background()); err != nil {
		t.Fatalf("export must work while idle: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 stored record, got %d", store.Len())
	}
}
