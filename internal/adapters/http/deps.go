package http

import (
	"github.com/nats-io/nats.go"

	"github.com/upt-maps/campusmap/internal/core/ports"
	"github.com/upt-maps/campusmap/internal/core/usecases"
)

// Dependencies holds everything the HTTP handlers need.
type Dependencies struct {
	Store     *usecases.PathStore
	Sessions  *usecases.SessionManager
	Bridge    *usecases.RenderBridge
	Clipboard ports.ClipboardService
	Storage   ports.KVStorage
	NATS      *nats.Conn
	FloorsDir string
}
