package usecases

import (
	"context"
	"log/slog"
	"sort"

	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/core/ports"
)

// Stroke styling for the bordered-line rendering: every path is drawn as a
// wide dark outline with a narrower fill on top, both from the same point
// list. Purely cosmetic; only one line's points are ever stored.
const (
	outlineColor  = "#1f2d3d"
	outlineWeight = 8.0
	savedColor    = "#2f80ed"
	draftColor    = "#eb5757"
	fillWeight    = 4.0
)

// RenderBridge projects the path store and every live draft onto the map
// surface. It is a pure function of current state: each notification
// triggers a full redraw of the overlay layer, no diffing.
type RenderBridge struct {
	surface  ports.MapSurface
	store    *PathStore
	sessions *SessionManager
}

// NewRenderBridge wires the bridge to state-change notifications and
// performs an initial draw.
func NewRenderBridge(surface ports.MapSurface, store *PathStore, sessions *SessionManager) *RenderBridge {
	b := &RenderBridge{surface: surface, store: store, sessions: sessions}
	store.Subscribe(func() { b.redraw() })
	sessions.Subscribe(func(string, domain.PointList) { b.redraw() })
	b.redraw()
	return b
}

// Redraw recomputes the full overlay set and pushes it to the surface.
func (b *RenderBridge) Redraw(ctx context.Context) error {
	overlays := BuildOverlays(b.sessions.Drafts(), b.store.List())
	return b.surface.ReplaceOverlays(ctx, overlays)
}

// Fit pans the surface to the bounding box of everything rendered.
// No-op when nothing is drawn.
func (b *RenderBridge) Fit(ctx context.Context) error {
	var points []domain.GeoPoint
	for _, rec := range b.store.List() {
		points = append(points, rec.Points...)
	}
	for _, draft := range b.sessions.Drafts() {
		points = append(points, draft...)
	}
	bounds, ok := domain.BoundsOf(points)
	if !ok {
		return nil
	}
	return b.surface.FitBounds(ctx, bounds)
}

func (b *RenderBridge) redraw() {
	if err := b.Redraw(context.Background()); err != nil {
		slog.Warn("map redraw failed", "error", err)
	}
}

// BuildOverlays is the pure projection: saved records first in store order,
// then live drafts in session-id order, each as an outline/fill pair.
func BuildOverlays(drafts map[string]domain.PointList, records []domain.PathRecord) []ports.Overlay {
	overlays := make([]ports.Overlay, 0, 2*(len(records)+len(drafts)))
	for _, rec := range records {
		overlays = append(overlays, borderedLine(rec.ID, rec.Points, savedColor)...)
	}

	ids := make([]string, 0, len(drafts))
	for id := range drafts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		overlays = append(overlays, borderedLine("draft:"+id, drafts[id], draftColor)...)
	}
	return overlays
}

func borderedLine(id string, points domain.PointList, fillColor string) []ports.Overlay {
	if len(points) == 0 {
		return nil
	}
	return []ports.Overlay{
		{ID: id + ":outline", Role: "outline", Color: outlineColor, Weight: outlineWeight, Points: points},
		{ID: id + ":fill", Role: "fill", Color: fillColor, Weight: fillWeight, Points: points},
	}
}
