package service

import (
	"path/filepath"
	"testing"
)

func TestResponseStoreReplaces(t *testing.T) {
	store := NewResponseStore()
	if store.Get() != nil {
		t.Fatal("new store should hold no response")
	}

	first := &LocationResponse{Name: "Alpha", SURs: map[string]string{"smoking": "no"}}
	store.Set(first)
	if got := store.Get(); got != first {
		t.Fatalf("Get() = %v, want the response just set", got)
	}

	second := &LocationResponse{Name: "Beta"}
	store.Set(second)
	got := store.Get()
	if got != second {
		t.Fatalf("Get() = %v, want the replacement response", got)
	}
	if len(got.SURs) != 0 {
		t.Fatal("replacement must not merge fields from the old response")
	}
}

func TestDefaultLayers(t *testing.T) {
	l := DefaultLayers()
	if !l.MapTiles || !l.ComputedPolygon || !l.TruthPolygon {
		t.Fatalf("tiles, computed and truth should default on: %+v", l)
	}
	if l.Buildings || l.GeneratedPolygons {
		t.Fatalf("buildings and generated polygons should default off: %+v", l)
	}
}

func TestLayerStorePersistence(t *testing.T) {
	dir := t.TempDir()

	store := NewLayerStore(dir)
	if got := store.Get(); got != DefaultLayers() {
		t.Fatalf("fresh store = %+v, want defaults", got)
	}

	want := LayerConfig{Buildings: true, GeneratedPolygons: true}
	if err := store.Set(want); err != nil {
		t.Fatal(err)
	}

	reloaded := NewLayerStore(dir)
	if got := reloaded.Get(); got != want {
		t.Fatalf("reloaded = %+v, want %+v", got, want)
	}
	if _, err := filepath.Glob(filepath.Join(dir, "layers.json")); err != nil {
		t.Fatal(err)
	}
}

func TestShowWay(t *testing.T) {
	building := Way{Tags: map[string]string{"building": "yes"}}
	generated := Way{Tags: map[string]string{"source": "gen_from_osm_node"}}
	plain := Way{Tags: map[string]string{"amenity": "cafe"}}
	untagged := Way{Tags: map[string]string{}}

	tests := []struct {
		name string
		cfg  LayerConfig
		way  Way
		want bool
	}{
		{"building visible", LayerConfig{Buildings: true}, building, true},
		{"building hidden", LayerConfig{}, building, false},
		{"generated visible", LayerConfig{GeneratedPolygons: true}, generated, true},
		{"generated hidden", LayerConfig{Buildings: true}, generated, false},
		{"plain never shown", LayerConfig{Buildings: true, GeneratedPolygons: true}, plain, false},
		{"empty tags never shown", LayerConfig{Buildings: true, GeneratedPolygons: true}, untagged, false},
		{"building toggle does not match source", LayerConfig{GeneratedPolygons: true}, building, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ShowWay(tt.way); got != tt.want {
				t.Fatalf("ShowWay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWayRing(t *testing.T) {
	open := Way{Polygon: []LatLng{{0, 0}, {0, 1}, {1, 1}}}
	ring := open.Ring()
	if len(ring) != 4 {
		t.Fatalf("open ring should be closed, got %d points", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Fatal("ring not closed")
	}

	closed := Way{Polygon: []LatLng{{0, 0}, {0, 1}, {1, 1}, {0, 0}}}
	if got := closed.Ring(); len(got) != 4 {
		t.Fatalf("already-closed ring should keep %d points, got %d", 4, len(got))
	}

	degenerate := Way{Polygon: []LatLng{{0, 0}, {1, 1}}}
	if got := degenerate.Ring(); len(got) != 2 {
		t.Fatalf("two-point ring should pass through, got %d points", len(got))
	}

	if got := (Way{}).Ring(); got != nil {
		t.Fatalf("empty way should yield nil ring, got %v", got)
	}
}
