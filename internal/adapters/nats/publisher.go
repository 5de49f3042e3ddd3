package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/upt-maps/campusmap/internal/core/domain"
)

// NATS subjects carrying map events to the WebSocket relay. Plain core NATS,
// no JetStream: these are ephemeral redraw triggers, and replaying stale
// overlay sets after a reconnect would be wrong.
const (
	SubjectPathsChanged = "map.paths.changed"
	SubjectDraftPrefix  = "map.draft." // + session id
	SubjectOverlays     = "map.overlays.replace"
	SubjectFitBounds    = "map.fit"
	SubjectClipPrefix   = "map.clipboard." // + session id
)

// Publisher implements ports.EventPublisher over a NATS connection.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS with endless reconnects.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) PublishPathsChanged(ctx context.Context, records []domain.PathRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectPathsChanged, data)
}

func (p *Publisher) PublishDraftChanged(ctx context.Context, sessionID string, draft domain.PointList) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectDraftPrefix+sessionID, data)
}

func (p *Publisher) PublishBroadcast(ctx context.Context, subject string, data []byte) error {
	return p.conn.Publish(subject, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (the WebSocket
// relay holds its own).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
