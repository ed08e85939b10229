// Package config loads the reviewer's YAML configuration file and applies
// defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MapConfig holds the tile provider and the idle viewport.
type MapConfig struct {
	TileURL       string     `yaml:"tile_url"`
	Attribution   string     `yaml:"attribution"`
	DefaultCenter [2]float64 `yaml:"default_center"`
	DefaultZoom   int        `yaml:"default_zoom"`
	LocationZoom  int        `yaml:"location_zoom"`
}

// Config is the full reviewer configuration.
type Config struct {
	// BackendURL is the endpoint of the location-processing service.
	BackendURL string `yaml:"backend_url"`
	// DataDir holds client-local state (persisted layer toggles).
	DataDir string `yaml:"data_dir"`
	// Compat selects the client capability profile: modern, legacy or
	// minimal.
	Compat string    `yaml:"compat"`
	Map    MapConfig `yaml:"map"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		BackendURL: "http://localhost:8080/",
		DataDir:    ".data",
		Compat:     "modern",
		Map: MapConfig{
			TileURL:       "https://{s}.tile.osm.org/{z}/{x}/{y}.png",
			Attribution:   `Maps: &copy; <a href="https://www.openstreetmap.org">OpenStreetMap</a> contributors`,
			DefaultCenter: [2]float64{53.598192, 9.932419},
			DefaultZoom:   16,
			LocationZoom:  17,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults; a missing file is an error so typos surface at startup.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
