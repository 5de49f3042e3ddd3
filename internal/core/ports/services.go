package ports

import (
	"context"

	"github.com/upt-maps/campusmap/internal/core/domain"
)

// Overlay is one styled polyline stroke on the map surface. A bordered line
// is two overlays sharing one point list: a wider outline stroke rendered
// beneath a narrower fill stroke.
type Overlay struct {
	ID     string           `json:"id"`
	Role   string           `json:"role"` // "outline" | "fill"
	Color  string           `json:"color"`
	Weight float64          `json:"weight"`
	Points domain.PointList `json:"points"`
}

// MapSurface is the narrow capability set the render bridge needs from
// whatever is actually drawing the map. No mapping-library API leaks
// through it.
type MapSurface interface {
	// ReplaceOverlays swaps the full overlay set; the bridge does no
	// incremental diffing.
	ReplaceOverlays(ctx context.Context, overlays []Overlay) error
	FitBounds(ctx context.Context, b domain.Bounds) error
}

// EventPublisher pushes domain events to remote listeners (the browser map
// via the WebSocket relay). All publishes are best-effort: a failure never
// rolls back the state mutation that triggered it.
type EventPublisher interface {
	PublishPathsChanged(ctx context.Context, records []domain.PathRecord) error
	PublishDraftChanged(ctx context.Context, sessionID string, draft domain.PointList) error
	PublishBroadcast(ctx context.Context, subject string, data []byte) error
}

// ClipboardService delivers exported JSON to the author's client as a
// post-action after a successful export. Failures are reported on their own
// channel; callers fall back to showing the raw payload.
type ClipboardService interface {
	Push(ctx context.Context, sessionID string, payload []byte) error
}
