package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/upt-maps/campusmap/internal/core/domain"
)

func TestPointListJSONShape(t *testing.T) {
	points := domain.PointList{
		{Lat: 45.0, Lon: 21.0},
		{Lat: 45.1234567, Lon: 21.7654321},
	}

	data, err := json.Marshal(points)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Tuples, rounded to 6 decimals.
	want := `[[45,21],[45.123457,21.765432]]`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestPointListRoundTrip(t *testing.T) {
	in := domain.PointList{
		{Lat: 45.747113, Lon: 21.226678},
		{Lat: 45.747558, Lon: 21.228190},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out domain.PointList
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("expected %d points, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("point %d: expected %v, got %v", i, in[i], out[i])
		}
	}
}

func TestGeoPointValid(t *testing.T) {
	cases := []struct {
		name  string
		point domain.GeoPoint
		valid bool
	}{
		{"campus", domain.GeoPoint{Lat: 45.747, Lon: 21.226}, true},
		{"poles", domain.GeoPoint{Lat: 90, Lon: 180}, true},
		{"lat overflow", domain.GeoPoint{Lat: 91, Lon: 0}, false},
		{"lon overflow", domain.GeoPoint{Lat: 0, Lon: -180.5}, false},
	}

	for _, tc := range cases {
		if got := tc.point.Valid(); got != tc.valid {
			t.Errorf("%s: expected valid=%v, got %v", tc.name, tc.valid, got)
		}
	}
}

func TestPathRecordValidate(t *testing.T) {
	rec := domain.PathRecord{ID: "p1"}
	if err := rec.Validate(); !errors.Is(err, domain.ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}

	rec.Points = domain.PointList{{Lat: 200, Lon: 0}}
	if err := rec.Validate(); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}

	rec.Points = domain.PointList{{Lat: 45, Lon: 21}}
	if err := rec.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBoundsOf(t *testing.T) {
	points := []domain.GeoPoint{
		{Lat: 45.0, Lon: 21.5},
		{Lat: 45.2, Lon: 21.0},
		{Lat: 44.9, Lon: 21.3},
	}

	b, ok := domain.BoundsOf(points)
	if !ok {
		t.Fatal("expected bounds for non-empty input")
	}
	if b.MinLat != 44.9 || b.MaxLat != 45.2 || b.MinLon != 21.0 || b.MaxLon != 21.5 {
		t.Errorf("wrong bounds: %+v", b)
	}

	if _, ok := domain.BoundsOf(nil); ok {
		t.Error("expected no bounds for empty input")
	}
}
