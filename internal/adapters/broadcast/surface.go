// Package broadcast implements the map-surface and clipboard ports on top
// of the event publisher: the browser holding the real map subscribes to
// these events through the WebSocket relay and applies them to its overlay
// layer.
package broadcast

import (
	"context"
	"encoding/json"

	natsadapter "github.com/upt-maps/campusmap/internal/adapters/nats"
	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/core/ports"
	"github.com/upt-maps/campusmap/internal/pkg/metrics"
)

// Surface implements ports.MapSurface by broadcasting overlay commands.
type Surface struct {
	publisher ports.EventPublisher
}

// NewSurface wraps an event publisher as a map surface.
func NewSurface(publisher ports.EventPublisher) *Surface {
	return &Surface{publisher: publisher}
}

// ReplaceOverlays broadcasts the full overlay set.
func (s *Surface) ReplaceOverlays(ctx context.Context, overlays []ports.Overlay) error {
	if overlays == nil {
		overlays = []ports.Overlay{}
	}
	data, err := json.Marshal(overlays)
	if err != nil {
		return err
	}
	metrics.OverlayRedraws.Inc()
	return s.publisher.PublishBroadcast(ctx, natsadapter.SubjectOverlays, data)
}

// FitBounds asks the client map to pan/zoom to the box.
func (s *Surface) FitBounds(ctx context.Context, b domain.Bounds) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.publisher.PublishBroadcast(ctx, natsadapter.SubjectFitBounds, data)
}

// Clipboard implements ports.ClipboardService by pushing the payload to the
// author's client. Delivery is best-effort; the HTTP layer falls back to
// returning the payload inline when this fails.
type Clipboard struct {
	publisher ports.EventPublisher
}

// NewClipboard wraps an event publisher as a clipboard service.
func NewClipboard(publisher ports.EventPublisher) *Clipboard {
	return &Clipboard{publisher: publisher}
}

// Push sends the payload on the session's clipboard subject.
func (c *Clipboard) Push(ctx context.Context, sessionID string, payload []byte) error {
	return c.publisher.PublishBroadcast(ctx, natsadapter.SubjectClipPrefix+sessionID, payload)
}
