package http

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/core/usecases"
	"github.com/upt-maps/campusmap/internal/pkg/geospatial"
	"github.com/upt-maps/campusmap/internal/pkg/metrics"
)

// session resolves the draw session addressed by the request. Browsers that
// never set the query parameter all share the default session, matching the
// single-tab behavior of the original viewer.
func session(c *fiber.Ctx, deps *Dependencies) *usecases.DrawSession {
	return deps.Sessions.Session(c.Query("session"))
}

// sessionState is the draw-session view returned by every session endpoint.
type sessionState struct {
	Session string           `json:"session"`
	Drawing bool             `json:"drawing"`
	Points  domain.PointList `json:"points"`
}

func stateOf(s *usecases.DrawSession) sessionState {
	points := s.Draft()
	if points == nil {
		points = domain.PointList{}
	}
	return sessionState{Session: s.ID(), Drawing: s.Drawing(), Points: points}
}

// GetSessionHandler returns the current draw-session state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(stateOf(session(c, deps)))
	}
}

// StartDrawHandler switches the session into drawing mode.
func StartDrawHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session(c, deps)
		s.Start()
		return c.JSON(stateOf(s))
	}
}

// StopDrawHandler switches the session back to idle; the draft is kept.
func StopDrawHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session(c, deps)
		s.Stop()
		return c.JSON(stateOf(s))
	}
}

// AddPointHandler appends a clicked map coordinate to the draft.
func AddPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body domain.GeoPoint
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "body must be {\"lat\": ..., \"lon\": ...}")
		}

		s := session(c, deps)
		if err := s.AddPoint(body); err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidCoordinate):
				metrics.DraftPointsRejected.Inc()
				return errInvalidCoordinate(c, err.Error())
			case errors.Is(err, usecases.ErrNotDrawing):
				return errConflict(c, "start drawing before adding points")
			default:
				return errInternal(c, err.Error())
			}
		}
		metrics.DraftPointsAccepted.Inc()
		return c.JSON(stateOf(s))
	}
}

// UndoPointHandler drops the last draft point.
func UndoPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session(c, deps)
		s.Undo()
		return c.JSON(stateOf(s))
	}
}

// ClearDraftHandler empties the draft without changing the drawing state.
func ClearDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session(c, deps)
		s.Clear()
		return c.JSON(stateOf(s))
	}
}

// exportResponse carries the saved record plus the outcome of the
// best-effort clipboard push. The payload is always returned inline, so a
// failed push still leaves the author with the raw JSON to copy manually.
type exportResponse struct {
	Path      domain.PathRecord `json:"path"`
	Clipboard string            `json:"clipboard"` // "pushed" | "unavailable"
}

// ExportDraftHandler promotes the draft into the path store. The draft
// itself is untouched; clearing or stopping afterwards is the author's
// choice.
func ExportDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session(c, deps)
		rec, err := s.Export(c.Context())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrEmptyPath):
				return errEmptyPath(c)
			case errors.Is(err, domain.ErrInvalidCoordinate):
				return errInvalidCoordinate(c, err.Error())
			default:
				return errInternal(c, err.Error())
			}
		}
		metrics.PathsExported.Inc()

		return c.Status(201).JSON(exportResponse{
			Path:      rec,
			Clipboard: pushToClipboard(c, deps, s.ID(), rec),
		})
	}
}

// pushToClipboard attempts the post-action clipboard delivery and reports
// the outcome. Never fails the request: the export already happened.
func pushToClipboard(c *fiber.Ctx, deps *Dependencies, sessionID string, rec domain.PathRecord) string {
	if deps.Clipboard == nil {
		return "unavailable"
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return "unavailable"
	}
	if err := deps.Clipboard.Push(c.Context(), sessionID, payload); err != nil {
		return "unavailable"
	}
	return "pushed"
}

// pathView decorates a stored record with its computed length.
type pathView struct {
	domain.PathRecord
	LengthMeters float64 `json:"length_m"`
}

func viewOf(rec domain.PathRecord) pathView {
	return pathView{PathRecord: rec, LengthMeters: geospatial.PathLength(rec.Points)}
}

// ListPathsHandler returns all saved paths in insertion order.
func ListPathsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records := deps.Store.List()

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(records)
		if offset >= total {
			records = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			records = records[offset:end]
		}

		views := make([]pathView, len(records))
		for i, rec := range records {
			views[i] = viewOf(rec)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: views, Pagination: pg})
	}
}

// GetPathHandler returns a single saved path.
func GetPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := deps.Store.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "path not found")
		}
		return c.JSON(viewOf(rec))
	}
}

// CreatePathHandler inserts a record directly, bypassing the draw session.
// Used for importing previously exported paths.
func CreatePathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rec domain.PathRecord
		if err := c.BodyParser(&rec); err != nil {
			return errBadRequest(c, "body must be a path record")
		}
		saved, err := deps.Store.Add(c.Context(), rec)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrEmptyPath):
				return errEmptyPath(c)
			case errors.Is(err, domain.ErrInvalidCoordinate):
				return errInvalidCoordinate(c, err.Error())
			default:
				return errConflict(c, err.Error())
			}
		}
		return c.Status(201).JSON(viewOf(saved))
	}
}

// DeletePathHandler removes a saved path. Deletion is idempotent: deleting
// an id that is already gone still returns 204.
func DeletePathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Store.Remove(c.Context(), c.Params("id"))
		metrics.PathsDeleted.Inc()
		return c.SendStatus(204)
	}
}

// ClearPathsHandler wipes the whole collection and its storage key.
func ClearPathsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Store.ClearAll(c.Context())
		return c.SendStatus(204)
	}
}

// ExportAllPathsHandler returns the full collection as a JSON array in the
// export shape.
func ExportAllPathsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := deps.Store.ExportAll()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="paths.json"`)
		return c.Send(data)
	}
}

// ExportPathHandler returns a single record in the export shape and pushes
// it to the author's clipboard as a post-action.
func ExportPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := deps.Store.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "path not found")
		}
		sessionID := c.Query("session")
		if sessionID == "" {
			sessionID = usecases.DefaultSessionID
		}
		return c.JSON(exportResponse{
			Path:      rec,
			Clipboard: pushToClipboard(c, deps, sessionID, rec),
		})
	}
}

// FitMapHandler asks the map surface to pan to everything drawn.
func FitMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Bridge.Fit(c.Context()); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(202)
	}
}

var floorSegment = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FloorPlanHandler serves indoor floor overlays by fixed path convention:
// <floors dir>/<building>_<level>.geojson.
func FloorPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		building := c.Params("building")
		level := c.Params("level")
		if !floorSegment.MatchString(building) || !floorSegment.MatchString(level) {
			return errBadRequest(c, "invalid building or level")
		}
		file := filepath.Join(deps.FloorsDir, building+"_"+level+".geojson")
		c.Set(fiber.HeaderContentType, "application/geo+json")
		if err := c.SendFile(file); err != nil {
			return errNotFound(c, "no floor plan for "+building+"/"+level)
		}
		return nil
	}
}
