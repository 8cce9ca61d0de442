package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var bangladeshBox = BoundingBox{MinLat: 18, MaxLat: 29, MinLon: 86, MaxLon: 95}

func TestBoundingBox_Contains(t *testing.T) {
	tests := []struct {
		name string
		geo  Geo
		want bool
	}{
		{"inside", Geo{Lat: 23.8, Lon: 90.4}, true},
		{"just below min latitude", Geo{Lat: 17.99, Lon: 90}, false},
		{"on min latitude", Geo{Lat: 18.00, Lon: 90}, true},
		{"on max latitude", Geo{Lat: 29.00, Lon: 90}, true},
		{"just above max latitude", Geo{Lat: 29.01, Lon: 90}, false},
		{"just below min longitude", Geo{Lat: 23, Lon: 85.99}, false},
		{"on min longitude", Geo{Lat: 23, Lon: 86.00}, true},
		{"on max longitude", Geo{Lat: 23, Lon: 95.00}, true},
		{"just above max longitude", Geo{Lat: 23, Lon: 95.01}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bangladeshBox.Contains(tt.geo))
		})
	}
}

func TestFilterRegion(t *testing.T) {
	inside1 := Candidate{ExternalID: "a", Geo: Geo{Lat: 23, Lon: 90}}
	outside := Candidate{ExternalID: "b", Geo: Geo{Lat: 35, Lon: 90}}
	inside2 := Candidate{ExternalID: "c", Geo: Geo{Lat: 25, Lon: 92}}

	input := []Candidate{inside1, outside, inside2}
	got := FilterRegion(bangladeshBox, input)

	want := []Candidate{inside1, inside2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FilterRegion mismatch (-want +got):\n%s", diff)
	}

	// Input order and contents untouched.
	assert.Len(t, input, 3)
	assert.Equal(t, "b", input[1].ExternalID)
}
