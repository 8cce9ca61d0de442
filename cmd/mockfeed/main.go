// Command mockfeed serves a generated USGS-style GeoJSON earthquake feed for
// local development, so the monitor can be exercised without hitting the real
// USGS endpoint. Most generated events fall inside the monitored region; a few
// land outside it to exercise the region filter.
//
// Usage:
//
//	go run ./cmd/mockfeed -addr :9090 -events 25
//	FEED_URL=http://localhost:9090/feed.geojson go run ./cmd/monitor
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

type feature struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Properties properties `json:"properties"`
	Geometry   geometry   `json:"geometry"`
}

type properties struct {
	Mag   float64 `json:"mag"`
	Place string  `json:"place"`
	Time  int64   `json:"time"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type feed struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

var places = []string{
	"near Dhaka, Bangladesh",
	"near Chittagong, Bangladesh",
	"near Sylhet, Bangladesh",
	"Myanmar border region",
	"India-Bangladesh border region",
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	events := flag.Int("events", 25, "number of events per snapshot")
	seed := flag.Int64("seed", 0, "random seed (0 uses the current time)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	http.HandleFunc("/feed.geojson", func(w http.ResponseWriter, r *http.Request) {
		snapshot := generate(rng, *events)
		w.Header().Set("Content-Type", "application/geo+json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			log.Printf("encode feed: %v", err)
		}
		log.Printf("served %d events to %s", len(snapshot.Features), r.RemoteAddr)
	})

	log.Printf("mock feed listening on %s (seed=%d, events=%d)", *addr, *seed, *events)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func generate(rng *rand.Rand, n int) feed {
	now := time.Now().UTC()
	features := make([]feature, 0, n)

	for i := 0; i < n; i++ {
		lat := 18 + rng.Float64()*11 // inside the monitored box
		lon := 86 + rng.Float64()*9
		if rng.Intn(5) == 0 {
			// Scatter some events well outside the box.
			lat = -60 + rng.Float64()*120
			lon = -180 + rng.Float64()*360
		}

		// Skew toward small magnitudes the way real feeds do, with the
		// occasional event above the alert floor.
		mag := 1 + rng.Float64()*3
		if rng.Intn(10) == 0 {
			mag = 4 + rng.Float64()*3
		}

		features = append(features, feature{
			Type: "Feature",
			ID:   fmt.Sprintf("mock%08d", rng.Intn(100000000)),
			Properties: properties{
				Mag:   float64(int(mag*10)) / 10,
				Place: places[rng.Intn(len(places))],
				Time:  now.Add(-time.Duration(rng.Intn(720)) * time.Minute).UnixMilli(),
			},
			Geometry: geometry{
				Type:        "Point",
				Coordinates: []float64{lon, lat, rng.Float64() * 70},
			},
		})
	}

	return feed{Type: "FeatureCollection", Features: features}
}
