// Package service contains the client-side domain model for the locreview
// reviewer: the location response payload, the overlay layer configuration,
// and the stores that own them.
package service

import (
	"fmt"

	"github.com/paulmach/orb"
)

// LatLng is an ordered latitude/longitude pair, matching the wire layout
// of the backend payload ([lat, lng]).
type LatLng [2]float64

// Lat returns the latitude component.
func (p LatLng) Lat() float64 { return p[0] }

// Lng returns the longitude component.
func (p LatLng) Lng() float64 { return p[1] }

// Point converts to an orb.Point (lng/lat order).
func (p LatLng) Point() orb.Point { return orb.Point{p[1], p[0]} }

func (p LatLng) String() string {
	return fmt.Sprintf("%g, %g", p[0], p[1])
}

// Way is a named candidate polygon with descriptive tags.
type Way struct {
	Polygon []LatLng          `json:"polygon" doc:"Ordered ring of lat/lng pairs"`
	Tags    map[string]string `json:"tags" doc:"Descriptive key/value tags"`
}

// Ring converts the way's coordinate sequence to an orb.Ring, closing it
// when the wire payload did not. Rings with fewer than three points pass
// through unchanged and degrade to degenerate shapes downstream.
func (w Way) Ring() orb.Ring {
	if len(w.Polygon) == 0 {
		return nil
	}
	ring := make(orb.Ring, 0, len(w.Polygon)+1)
	for _, p := range w.Polygon {
		ring = append(ring, p.Point())
	}
	if len(ring) >= 3 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// LocationResponse is the authoritative payload for one reviewed location.
// Once accepted into the ResponseStore it is never mutated; a new response
// fully replaces it.
type LocationResponse struct {
	Name          string            `json:"name" doc:"Display name"`
	Point         LatLng            `json:"point" doc:"Location position (lat, lng)"`
	ImageFilePath string            `json:"image_file_path,omitempty" doc:"Server path of the location photo, if any"`
	SURs          map[string]string `json:"surs" doc:"Structured reference annotations"`
	Truth         *Way              `json:"truth,omitempty" doc:"Ground-truth boundary"`
	Computed      *Way              `json:"computed,omitempty" doc:"Backend-computed boundary"`
	Ways          map[string]Way    `json:"ways" doc:"Candidate polygons near the location"`
	KML           string            `json:"kml" doc:"Raw KML export payload"`
	KMLName       string            `json:"kml_name" doc:"Suggested KML download filename"`
}

// LayerConfig is the set of overlay visibility toggles. Purely client-local;
// the backend never sees it.
type LayerConfig struct {
	MapTiles          bool `json:"mapTiles" doc:"Base map tiles" default:"true"`
	Buildings         bool `json:"buildings" doc:"Candidate ways tagged as buildings"`
	GeneratedPolygons bool `json:"generatedPolygons" doc:"Candidate ways generated from OSM nodes"`
	ComputedPolygon   bool `json:"computedPolygon" doc:"Backend-computed boundary" default:"true"`
	TruthPolygon      bool `json:"truthPolygon" doc:"Ground-truth boundary" default:"true"`
}

// DefaultLayers returns the startup layer configuration: tiles, computed
// and truth visible, candidate overlays hidden.
func DefaultLayers() LayerConfig {
	return LayerConfig{
		MapTiles:        true,
		ComputedPolygon: true,
		TruthPolygon:    true,
	}
}

// ShowWay reports whether a candidate way passes the visibility predicate
// for this configuration: buildings are shown by the presence of a
// "building" tag, generated polygons by source=gen_from_osm_node.
func (c LayerConfig) ShowWay(w Way) bool {
	if c.Buildings {
		if _, ok := w.Tags["building"]; ok {
			return true
		}
	}
	return c.GeneratedPolygons && w.Tags["source"] == "gen_from_osm_node"
}
