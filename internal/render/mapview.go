// Package render builds the view models the reviewer page consumes: the
// full-rebuild map view and the info panel. Building a view never mutates
// the response it reads.
package render

import (
	"sort"

	"github.com/geoplat/locreview/internal/service"
)

// Fixed overlay styles.
const (
	truthColor     = "#0f0"
	computedColor  = "#f00"
	candidateColor = "#000"

	boundaryWeight  = 5
	candidateWeight = 1

	popupMaxWidth = 400
)

// MapOptions holds the non-response inputs of the map view: tile provider,
// attribution, and the idle default viewport.
type MapOptions struct {
	TileURL       string
	Attribution   string
	DefaultCenter service.LatLng
	DefaultZoom   int
	LocationZoom  int
}

// DefaultMapOptions returns the stock OSM tile source and idle viewport.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		TileURL:       "https://{s}.tile.osm.org/{z}/{x}/{y}.png",
		Attribution:   `Maps: &copy; <a href="https://www.openstreetmap.org">OpenStreetMap</a> contributors`,
		DefaultCenter: service.LatLng{53.598192, 9.932419},
		DefaultZoom:   16,
		LocationZoom:  17,
	}
}

// TagRow is one key/value line of a popup or info table.
type TagRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Popup describes the click popup of a candidate polygon: the way name and
// all of its tags as a table, no close button, fixed max width.
type Popup struct {
	Title       string   `json:"title"`
	Rows        []TagRow `json:"rows"`
	MaxWidth    int      `json:"maxWidth"`
	CloseButton bool     `json:"closeButton"`
}

// PolygonView is one overlay polygon ready for drawing.
type PolygonView struct {
	Name      string           `json:"name"`
	Ring      []service.LatLng `json:"ring"`
	Color     string           `json:"color"`
	Weight    int              `json:"weight"`
	Clickable bool             `json:"clickable"`
	Popup     *Popup           `json:"popup,omitempty"`
}

// MapView is the complete description of the map surface. The page
// discards its previous Leaflet instance and rebuilds from this view, so
// stale overlays can never leak across renders.
type MapView struct {
	Center      service.LatLng `json:"center"`
	Zoom        int            `json:"zoom"`
	Tiles       bool           `json:"tiles"`
	TileURL     string         `json:"tileUrl"`
	Attribution string         `json:"attribution"`
	Marker      *service.LatLng `json:"marker,omitempty"`
	Polygons    []PolygonView  `json:"polygons"`
}

// BuildMapView derives the map view for a response and layer configuration.
// A nil response yields the idle view: default center and zoom, tiles per
// the configuration, no marker, no overlays.
func BuildMapView(resp *service.LocationResponse, cfg service.LayerConfig, opts MapOptions) MapView {
	view := MapView{
		Center:      opts.DefaultCenter,
		Zoom:        opts.DefaultZoom,
		Tiles:       cfg.MapTiles,
		TileURL:     opts.TileURL,
		Attribution: opts.Attribution,
	}
	if resp == nil {
		return view
	}

	view.Center = resp.Point
	view.Zoom = opts.LocationZoom
	marker := resp.Point
	view.Marker = &marker

	if cfg.TruthPolygon && resp.Truth != nil {
		view.addPolygon("Truth polygon", *resp.Truth, truthColor, boundaryWeight, false)
	}
	if cfg.ComputedPolygon && resp.Computed != nil {
		view.addPolygon("Computed polygon", *resp.Computed, computedColor, boundaryWeight, false)
	}

	// Stable draw order for the candidate ways; the wire payload is an
	// unordered mapping.
	names := make([]string, 0, len(resp.Ways))
	for name := range resp.Ways {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		way := resp.Ways[name]
		if cfg.ShowWay(way) {
			view.addPolygon(name, way, candidateColor, candidateWeight, true)
		}
	}

	return view
}

// addPolygon appends a polygon view for a way. Ways with no coordinates
// degrade to a no-op; one- and two-point rings pass through as degenerate
// shapes and must not crash the page.
func (v *MapView) addPolygon(name string, way service.Way, color string, weight int, clickable bool) {
	ring := way.Ring()
	if len(ring) == 0 {
		return
	}

	latlngs := make([]service.LatLng, len(ring))
	for i, pt := range ring {
		latlngs[i] = service.LatLng{pt.Lat(), pt.Lon()}
	}

	poly := PolygonView{
		Name:      name,
		Ring:      latlngs,
		Color:     color,
		Weight:    weight,
		Clickable: clickable,
	}
	if clickable {
		poly.Popup = &Popup{
			Title:    name,
			Rows:     sortedRows(way.Tags),
			MaxWidth: popupMaxWidth,
		}
	}
	v.Polygons = append(v.Polygons, poly)
}

// sortedRows flattens a tag mapping into display rows. The wire format
// does not define an order, so keys are sorted for a deterministic table.
func sortedRows(tags map[string]string) []TagRow {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]TagRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, TagRow{Key: k, Value: tags[k]})
	}
	return rows
}
