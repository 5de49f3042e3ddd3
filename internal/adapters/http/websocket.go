package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/upt-maps/campusmap/internal/adapters/nats"
	"github.com/upt-maps/campusmap/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to map feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "overlays" | "paths" | "draft" | "clipboard"
	Session string `json:"session"` // draw session id for draft/clipboard channels
}

// wsEnvelope wraps relayed events so the browser can dispatch them.
type wsEnvelope struct {
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

// WebSocketHandler upgrades to WebSocket and relays map events from NATS to
// the browser: overlay redraws, fit-bounds commands, path-collection
// changes, draft updates, and clipboard pushes. Every client starts
// subscribed to the overlay channel, which is all a plain map view needs.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Debug("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		relay := func(msg *nats.Msg) {
			_ = writeJSON(wsEnvelope{Subject: msg.Subject, Data: msg.Data})
		}

		subscribe := func(subjects ...string) error {
			for _, subject := range subjects {
				if _, exists := subs[subject]; exists {
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					return err
				}
				subs[subject] = s
			}
			return nil
		}

		// Overlay feed by default.
		if err := subscribe(natsadapter.SubjectOverlays, natsadapter.SubjectFitBounds); err != nil {
			slog.Warn("ws default subscribe failed", "error", err)
			return
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subjects, errMsg := subjectsFor(m)
			if errMsg != "" {
				_ = writeJSON(map[string]string{"error": errMsg})
				continue
			}

			switch m.Action {
			case "subscribe":
				if err := subscribe(subjects...); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "channel": m.Channel})

			case "unsubscribe":
				for _, subject := range subjects {
					if s, exists := subs[subject]; exists {
						_ = s.Unsubscribe()
						delete(subs, subject)
					}
				}
				_ = writeJSON(map[string]string{"status": "unsubscribed", "channel": m.Channel})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Debug("ws client disconnected", "remote", remoteAddr)
	}
}

// subjectsFor maps a client channel request to NATS subjects.
func subjectsFor(m wsMessage) ([]string, string) {
	session := m.Session
	if session == "" {
		session = "default"
	}

	switch m.Channel {
	case "", "overlays":
		return []string{natsadapter.SubjectOverlays, natsadapter.SubjectFitBounds}, ""
	case "paths":
		return []string{natsadapter.SubjectPathsChanged}, ""
	case "draft":
		return []string{natsadapter.SubjectDraftPrefix + session}, ""
	case "clipboard":
		return []string{natsadapter.SubjectClipPrefix + session}, ""
	default:
		return nil, "unknown channel: " + m.Channel
	}
}
