package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// feedResponse mirrors the USGS GeoJSON summary format, reduced to the
// fields the pipeline consumes.
type feedResponse struct {
	Features []feedFeature `json:"features"`
}

type feedFeature struct {
	ID         string         `json:"id"`
	Properties feedProperties `json:"properties"`
	Geometry   feedGeometry   `json:"geometry"`
}

type feedProperties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"` // epoch milliseconds UTC
}

type feedGeometry struct {
	// Coordinates are ordered [lon, lat, depth]. Depth may be absent.
	Coordinates []float64 `json:"coordinates"`
}

// ParseFeed decodes a feed snapshot into validated candidates. Features
// missing an id, magnitude, or coordinates are skipped rather than failing
// the whole snapshot; the skip count is returned for logging. A body that
// is not valid GeoJSON fails entirely.
func ParseFeed(body []byte) ([]Candidate, int, error) {
	var resp feedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("parse feed snapshot: %w", err)
	}

	candidates := make([]Candidate, 0, len(resp.Features))
	skipped := 0

	for _, f := range resp.Features {
		c, ok := validateFeature(f)
		if !ok {
			skipped++
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, skipped, nil
}

// validateFeature converts one GeoJSON feature into a Candidate, rejecting
// entries that lack the required fields.
func validateFeature(f feedFeature) (Candidate, bool) {
	if f.ID == "" || f.Properties.Mag == nil || len(f.Geometry.Coordinates) < 2 {
		return Candidate{}, false
	}

	lon := f.Geometry.Coordinates[0]
	lat := f.Geometry.Coordinates[1]

	depth := 0.0
	if len(f.Geometry.Coordinates) > 2 {
		depth = math.Abs(f.Geometry.Coordinates[2])
	}

	location := f.Properties.Place
	if location == "" {
		location = "Unknown location"
	}

	return Candidate{
		ExternalID: f.ID,
		Magnitude:  *f.Properties.Mag,
		Location:   location,
		Geo:        Geo{Lat: lat, Lon: lon},
		Depth:      depth,
		OccurredAt: time.UnixMilli(f.Properties.Time).UTC(),
	}, true
}
