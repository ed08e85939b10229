package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// ResponseStore holds the single current location response. It is the sole
// source of truth for what the renderers display. Set fully replaces the
// held value; nothing ever merges into it.
type ResponseStore struct {
	mu       sync.RWMutex
	response *LocationResponse
}

// NewResponseStore creates an empty response store.
func NewResponseStore() *ResponseStore {
	return &ResponseStore{}
}

// Get returns the current response, or nil when none has been accepted yet.
func (s *ResponseStore) Get() *LocationResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.response
}

// Set atomically replaces the current response.
func (s *ResponseStore) Set(r *LocationResponse) {
	s.mu.Lock()
	s.response = r
	s.mu.Unlock()
}

// LayerStore manages the overlay layer configuration, persisted as a JSON
// file in the data directory so toggles survive restarts.
type LayerStore struct {
	dataDir string
	mu      sync.RWMutex
	layers  LayerConfig
}

// NewLayerStore creates a layer store, loading a persisted configuration
// if one exists and falling back to the defaults otherwise.
func NewLayerStore(dataDir string) *LayerStore {
	s := &LayerStore{
		dataDir: dataDir,
		layers:  DefaultLayers(),
	}
	s.loadFromDisk()
	return s
}

// Get returns the current layer configuration.
func (s *LayerStore) Get() LayerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers
}

// Set replaces the layer configuration and persists it.
func (s *LayerStore) Set(layers LayerConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = layers
	return s.saveToDisk()
}

func (s *LayerStore) configFile() string {
	return filepath.Join(s.dataDir, "layers.json")
}

func (s *LayerStore) loadFromDisk() {
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return // No persisted config yet, keep defaults
	}

	var layers LayerConfig
	if err := json.Unmarshal(data, &layers); err != nil {
		return // Invalid JSON, keep defaults
	}

	s.layers = layers
}

func (s *LayerStore) saveToDisk() error {
	if s.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.layers, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.configFile(), data, 0644)
}
