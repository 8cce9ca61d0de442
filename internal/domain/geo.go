package domain

import "math"

const earthRadiusKm = 6371.0

// Distance returns the haversine great-circle distance between two points
// in kilometers. Symmetric, non-negative, zero for identical coordinates.
func Distance(a, b Geo) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Nearest scans the reference table and returns the name of the closest
// point and the distance to it, rounded to whole kilometers. Ties go to the
// earlier table entry (strict < comparison, stable scan). Returns ("", 0)
// for an empty table.
func Nearest(g Geo, table []ReferencePoint) (string, int) {
	if len(table) == 0 {
		return "", 0
	}

	nearest := table[0]
	minDistance := Distance(g, Geo{Lat: nearest.Lat, Lon: nearest.Lon})

	for _, p := range table[1:] {
		d := Distance(g, Geo{Lat: p.Lat, Lon: p.Lon})
		if d < minDistance {
			minDistance = d
			nearest = p
		}
	}

	return nearest.Name, int(math.Round(minDistance))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
