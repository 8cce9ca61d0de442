package domain

import (
	"time"

	"github.com/google/uuid"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Candidate is a feed entry that passed validation but has not yet been
// checked against the store. Field values are exactly as reported by the
// feed except Depth, which is already normalized to a non-negative value.
type Candidate struct {
	ExternalID string
	Magnitude  float64
	Location   string
	Geo        Geo
	Depth      float64
	OccurredAt time.Time
}

// SeismicEvent is the persisted representation of one distinct earthquake.
// Events are append-only: written once per external id, never updated.
type SeismicEvent struct {
	ExternalID        string    `json:"external_id"`
	Magnitude         float64   `json:"magnitude"`
	Location          string    `json:"location"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Depth             float64   `json:"depth"`
	OccurredAt        time.Time `json:"occurred_at"`
	NearestReference  string    `json:"nearest_reference"`
	ReferenceDistance int       `json:"reference_distance_km"`
	CreatedAt         time.Time `json:"created_at"`
}

// ReferencePoint is a named coordinate used for proximity enrichment.
// The table is static configuration, read-only at runtime.
type ReferencePoint struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// Subscriber is a recipient of magnitude-threshold alerts. Email is the
// natural key, stored lowercased and trimmed.
type Subscriber struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	MagnitudeThreshold float64   `json:"magnitude_threshold"`
	IsActive           bool      `json:"is_active"`
	SubscribedAt       time.Time `json:"subscribed_at"`
}

// NewSeismicEvent enriches a candidate into its persisted form, deriving the
// nearest reference point and stamping the ingestion time.
func NewSeismicEvent(c Candidate, table []ReferencePoint) SeismicEvent {
	name, distance := Nearest(c.Geo, table)
	return SeismicEvent{
		ExternalID:        c.ExternalID,
		Magnitude:         c.Magnitude,
		Location:          c.Location,
		Latitude:          c.Geo.Lat,
		Longitude:         c.Geo.Lon,
		Depth:             c.Depth,
		OccurredAt:        c.OccurredAt,
		NearestReference:  name,
		ReferenceDistance: distance,
		CreatedAt:         clock.Now().UTC(),
	}
}

// DefaultReferencePoints is the compiled-in table of major Bangladeshi
// cities, used when no reference-point file is configured. Table order
// matters: Nearest breaks distance ties in favor of earlier entries.
var DefaultReferencePoints = []ReferencePoint{
	{Name: "Dhaka", Lat: 23.8103, Lon: 90.4125},
	{Name: "Chittagong", Lat: 22.3569, Lon: 91.7832},
	{Name: "Sylhet", Lat: 24.8949, Lon: 91.8687},
	{Name: "Rajshahi", Lat: 24.3745, Lon: 88.6042},
	{Name: "Khulna", Lat: 22.8456, Lon: 89.5403},
	{Name: "Cumilla", Lat: 23.4607, Lon: 91.1809},
	{Name: "Rangpur", Lat: 25.7439, Lon: 89.2752},
}
