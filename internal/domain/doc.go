// Package domain models USGS earthquake feed data for the Bangladesh region.
//
// # Data Source
//
// Events originate from the USGS real-time GeoJSON summary feeds, documented
// at https://earthquake.usgs.gov/earthquakes/feed/v1.0/geojson.php. The feed
// is a rolling snapshot: each fetch returns every event reported within the
// feed's retention window (30 days for the all_month feed), so the same
// event appears in many consecutive fetches and deduplication happens on the
// feed's event id.
//
// # Feed Conventions
//
// Geometry coordinates are ordered [longitude, latitude, depth]. Depth is in
// kilometers and is occasionally reported as a small negative number for
// shallow events; it is stored as its absolute value. Occurrence time is
// epoch milliseconds UTC. Magnitude may be null for unreviewed events; such
// features fail validation and are skipped.
//
// # Enrichment
//
// Each persisted event carries two derived attributes: the name of the
// nearest reference point (a fixed table of major Bangladeshi cities) and
// the great-circle distance to it, rounded to whole kilometers. Both are
// pure functions of the event coordinates and the table, so re-deriving
// them always yields the stored values.
package domain
