package domain

// BoundingBox is a closed latitude/longitude rectangle. Both boundaries are
// inclusive: a point exactly on an edge is inside.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the coordinate falls inside the box.
func (b BoundingBox) Contains(g Geo) bool {
	return g.Lat >= b.MinLat && g.Lat <= b.MaxLat &&
		g.Lon >= b.MinLon && g.Lon <= b.MaxLon
}

// FilterRegion returns the candidates inside the box, preserving feed order.
// The input slice is not mutated.
func FilterRegion(box BoundingBox, candidates []Candidate) []Candidate {
	inRegion := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if box.Contains(c.Geo) {
			inRegion = append(inRegion, c)
		}
	}
	return inRegion
}
