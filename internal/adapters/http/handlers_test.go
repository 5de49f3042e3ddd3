package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/upt-maps/campusmap/internal/adapters/http"
	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/core/ports"
	"github.com/upt-maps/campusmap/internal/core/usecases"
)

// --- Mock MapSurface ---

type mockSurface struct{}

func (m *mockSurface) ReplaceOverlays(ctx context.Context, overlays []ports.Overlay) error {
	return nil
}
func (m *mockSurface) FitBounds(ctx context.Context, b domain.Bounds) error { return nil }

// --- Test app setup ---

func newTestApp(t *testing.T) (*fiber.App, *handler.Dependencies) {
	t.Helper()

	store := usecases.NewPathStore(context.Background(), nil)
	sessions := usecases.NewSessionManager(store)
	bridge := usecases.NewRenderBridge(&mockSurface{}, store, sessions)

	deps := &handler.Dependencies{
		Store:     store,
		Sessions:  sessions,
		Bridge:    bridge,
		FloorsDir: t.TempDir(),
	}

	app := fiber.New()
	handler.SetupRoutes(app, deps)
	return app, deps
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()

	var req = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

// --- Tests ---

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := doJSON(t, app, "GET", "/v1/health", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
}

func TestDrawExportFlow(t *testing.T) {
	app, deps := newTestApp(t)

	if code, body := doJSON(t, app, "POST", "/v1/session/start", ""); code != 200 {
		t.Fatalf("start: expected 200, got %d: %s", code, body)
	}
	if code, _ := doJSON(t, app, "POST", "/v1/session/points", `{"lat":45.0,"lon":21.0}`); code != 200 {
		t.Fatalf("point 1: expected 200, got %d", code)
	}
	if code, _ := doJSON(t, app, "POST", "/v1/session/points", `{"lat":45.1,"lon":21.1}`); code != 200 {
		t.Fatalf("point 2: expected 200, got %d", code)
	}

	code, body := doJSON(t, app, "POST", "/v1/session/export", "")
	if code != 201 {
		t.Fatalf("export: expected 201, got %d: %s", code, body)
	}

	var exported struct {
		Path      domain.PathRecord `json:"path"`
		Clipboard string            `json:"clipboard"`
	}
	if err := json.Unmarshal(body, &exported); err != nil {
		t.Fatalf("parse export response: %v", err)
	}
	if exported.Path.ID == "" {
		t.Error("expected an assigned path id")
	}
	if exported.Clipboard != "unavailable" {
		t.Errorf("no clipboard configured, expected unavailable, got %q", exported.Clipboard)
	}
	want := domain.PointList{{Lat: 45.0, Lon: 21.0}, {Lat: 45.1, Lon: 21.1}}
	for i, p := range want {
		if exported.Path.Points[i] != p {
			t.Errorf("point %d: expected %v, got %v", i, p, exported.Path.Points[i])
		}
	}

	if deps.Store.Len() != 1 {
		t.Errorf("expected 1 stored path, got %d", deps.Store.Len())
	}

	// The draft is untouched by export.
	code, body = doJSON(t, app, "GET", "/v1/session", "")
	if code != 200 {
		t.Fatalf("session: expected 200, got %d", code)
	}
	var state struct {
		Drawing bool             `json:"drawing"`
		Points  domain.PointList `json:"points"`
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("parse session state: %v", err)
	}
	if len(state.Points) != 2 || !state.Drawing {
		t.Errorf("expected drawing session with 2 draft points, got %+v", state)
	}
}

func TestExportEmptyDraft(t *testing.T) {
	app, deps := newTestApp(t)

	code, body := doJSON(t, app, "POST", "/v1/session/export", "")
	if code != 422 {
		t.Fatalf("expected 422, got %d: %s", code, body)
	}

	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if apiErr.Code != "empty_path" {
		t.Errorf("expected code empty_path, got %q", apiErr.Code)
	}
	if deps.Store.Len() != 0 {
		t.Error("failed export must not touch the store")
	}
}

func TestAddPointErrors(t *testing.T) {
	app, _ := newTestApp(t)

	// Idle session: clicks are not captured.
	if code, _ := doJSON(t, app, "POST", "/v1/session/points", `{"lat":45,"lon":21}`); code != 409 {
		t.Errorf("expected 409 while idle, got %d", code)
	}

	doJSON(t, app, "POST", "/v1/session/start", "")

	code, body := doJSON(t, app, "POST", "/v1/session/points", `{"lat":95,"lon":21}`)
	if code != 400 {
		t.Fatalf("expected 400 for out-of-bounds point, got %d", code)
	}
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if apiErr.Code != "invalid_coordinate" {
		t.Errorf("expected code invalid_coordinate, got %q", apiErr.Code)
	}
}

func TestDeletePathIdempotent(t *testing.T) {
	app, deps := newTestApp(t)

	if _, err := deps.Store.Add(context.Background(), domain.PathRecord{
		ID:     "p1",
		Points: domain.PointList{{Lat: 1, Lon: 1}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if code, _ := doJSON(t, app, "DELETE", "/v1/paths/p1", ""); code != 204 {
		t.Errorf("expected 204, got %d", code)
	}
	if code, _ := doJSON(t, app, "DELETE", "/v1/paths/p1", ""); code != 204 {
		t.Errorf("repeated delete: expected 204, got %d", code)
	}
	if deps.Store.Len() != 0 {
		t.Errorf("expected empty store, got %d", deps.Store.Len())
	}
}

func TestListAndClearPaths(t *testing.T) {
	app, deps := newTestApp(t)

	for i := 0; i < 3; i++ {
		if _, err := deps.Store.Add(context.Background(), domain.PathRecord{
			Points: domain.PointList{{Lat: float64(45 + i), Lon: 21}, {Lat: float64(45 + i), Lon: 21.1}},
		}); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	code, body := doJSON(t, app, "GET", "/v1/paths", "")
	if code != 200 {
		t.Fatalf("list: expected 200, got %d", code)
	}
	var listed struct {
		Data []struct {
			ID           string  `json:"id"`
			LengthMeters float64 `json:"length_m"`
		} `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(listed.Data) != 3 || listed.Pagination.Total != 3 {
		t.Fatalf("expected 3 paths, got %d (total %d)", len(listed.Data), listed.Pagination.Total)
	}
	if listed.Data[0].LengthMeters <= 0 {
		t.Error("expected a computed positive length")
	}

	if code, _ := doJSON(t, app, "DELETE", "/v1/paths", ""); code != 204 {
		t.Fatalf("clear: expected 204, got %d", code)
	}
	code, body = doJSON(t, app, "GET", "/v1/paths", "")
	if code != 200 {
		t.Fatalf("list after clear: expected 200, got %d", code)
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(listed.Data) != 0 {
		t.Errorf("expected empty list, got %d", len(listed.Data))
	}
}

func TestGetPathNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	if code, _ := doJSON(t, app, "GET", "/v1/paths/nope", ""); code != 404 {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestImportPath(t *testing.T) {
	app, deps := newTestApp(t)

	code, body := doJSON(t, app, "POST", "/v1/paths",
		`{"id":"imported","type":"bike","points":[[45.0,21.0],[45.1,21.1]]}`)
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	rec, err := deps.Store.Get("imported")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Type != "bike" || len(rec.Points) != 2 {
		t.Errorf("unexpected imported record: %+v", rec)
	}

	// No points: rejected.
	if code, _ := doJSON(t, app, "POST", "/v1/paths", `{"id":"empty","points":[]}`); code != 422 {
		t.Errorf("expected 422 for empty import, got %d", code)
	}
}

func TestExportAllPaths(t *testing.T) {
	app, deps := newTestApp(t)

	if _, err := deps.Store.Add(context.Background(), domain.PathRecord{
		ID:     "p1",
		Points: domain.PointList{{Lat: 45.7471134, Lon: 21.2266789}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	code, body := doJSON(t, app, "GET", "/v1/paths/export", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}

	var records []domain.PathRecord
	if err := json.Unmarshal(body, &records); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records) != 1 || records[0].ID != "p1" {
		t.Fatalf("unexpected export: %s", body)
	}
	// Coordinates are rounded to 6 decimals on the wire.
	if records[0].Points[0] != (domain.GeoPoint{Lat: 45.747113, Lon: 21.226679}) {
		t.Errorf("expected rounded coordinates, got %v", records[0].Points[0])
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	app, _ := newTestApp(t)

	doJSON(t, app, "POST", "/v1/session/start?session=alice", "")
	doJSON(t, app, "POST", "/v1/session/points?session=alice", `{"lat":45,"lon":21}`)

	code, body := doJSON(t, app, "GET", "/v1/session?session=bob", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var state struct {
		Session string           `json:"session"`
		Drawing bool             `json:"drawing"`
		Points  domain.PointList `json:"points"`
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("parse state: %v", err)
	}
	if state.Session != "bob" || state.Drawing || len(state.Points) != 0 {
		t.Errorf("bob's session leaked state: %+v", state)
	}
}
