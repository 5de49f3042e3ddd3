package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultPathType tags exported paths when the author did not pick one.
const DefaultPathType = "pedestrian"

var (
	// ErrEmptyPath is returned when an export or store insert is attempted
	// with zero points.
	ErrEmptyPath = errors.New("path has no points")

	// ErrInvalidCoordinate is returned when a point lies outside
	// latitude/longitude bounds. The point is rejected, never stored.
	ErrInvalidCoordinate = errors.New("coordinate out of bounds")

	// ErrPathNotFound is returned by lookups of a path id that is not in
	// the store.
	ErrPathNotFound = errors.New("path not found")
)

// PointList is an ordered sequence of geographic points. On the wire it is
// an array of [lat, lon] pairs, rounded to CoordinatePrecision.
type PointList []GeoPoint

// MarshalJSON encodes the list as [[lat, lon], ...].
func (pl PointList) MarshalJSON() ([]byte, error) {
	pairs := make([][2]float64, len(pl))
	for i, p := range pl {
		r := p.Round()
		pairs[i] = [2]float64{r.Lat, r.Lon}
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes [[lat, lon], ...].
func (pl *PointList) UnmarshalJSON(data []byte) error {
	var pairs [][2]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	points := make(PointList, len(pairs))
	for i, pair := range pairs {
		points[i] = GeoPoint{Lat: pair[0], Lon: pair[1]}
	}
	*pl = points
	return nil
}

// Validate checks every point against coordinate bounds.
func (pl PointList) Validate() error {
	for i, p := range pl {
		if !p.Valid() {
			return fmt.Errorf("point %d (%v, %v): %w", i, p.Lat, p.Lon, ErrInvalidCoordinate)
		}
	}
	return nil
}

// Clone returns an independent copy of the list.
func (pl PointList) Clone() PointList {
	if pl == nil {
		return nil
	}
	out := make(PointList, len(pl))
	copy(out, pl)
	return out
}

// PathRecord is a saved user-drawn path. Records are immutable once created;
// editing a path means deleting it and exporting a new one.
type PathRecord struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Points PointList `json:"points"`
}

// Validate checks store invariants: at least one point, all in bounds.
func (r *PathRecord) Validate() error {
	if len(r.Points) == 0 {
		return ErrEmptyPath
	}
	return r.Points.Validate()
}
