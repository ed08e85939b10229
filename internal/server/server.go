// Package server wires the reviewer together: stores, backend client,
// workflow controller, exporter, Huma API and the viewer page.
package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/geoplat/locreview/internal/api"
	"github.com/geoplat/locreview/internal/api/reviewer"
	"github.com/geoplat/locreview/internal/backend"
	"github.com/geoplat/locreview/internal/capability"
	"github.com/geoplat/locreview/internal/config"
	"github.com/geoplat/locreview/internal/kml"
	"github.com/geoplat/locreview/internal/render"
	"github.com/geoplat/locreview/internal/service"
	"github.com/geoplat/locreview/internal/templates"
	"github.com/geoplat/locreview/internal/workflow"
)

//go:embed web/*
var webFS embed.FS

// Config holds the server configuration.
type Config struct {
	Host string
	Port string
	App  config.Config
}

// Server is the reviewer HTTP server.
type Server struct {
	config  Config
	mux     *http.ServeMux
	humaAPI huma.API

	store      *service.ResponseStore
	layers     *service.LayerStore
	controller *workflow.Controller
	exporter   *kml.Exporter
	caps       capability.Probe

	page *template.Template
}

// New creates a new reviewer server.
func New(cfg Config) (*Server, error) {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("locreview API", "1.0.0")
	humaConfig.Info.Description = "Reviewer client for geotagged location records: query or submit locations against the processing backend and inspect the result."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaAPI := humago.New(mux, humaConfig)

	renderer, err := templates.New()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	page, err := template.ParseFS(webFS, "web/viewer.html")
	if err != nil {
		return nil, fmt.Errorf("load viewer page: %w", err)
	}

	caps := capability.FromProfile(cfg.App.Compat)
	store := service.NewResponseStore()
	layers := service.NewLayerStore(cfg.App.DataDir)
	bus := service.NewEventBus()
	exporter := kml.NewExporter(caps)

	// The exporter is the first refresh dependent: the artifact must be
	// rebuilt before any page re-render can offer the download link.
	refresher := service.NewRefresher()
	refresher.Register(exporter.Prepare)

	client := backend.New(cfg.App.BackendURL)
	controller := workflow.NewController(client, store, refresher, bus)

	mapOpts := render.MapOptions{
		TileURL:       cfg.App.Map.TileURL,
		Attribution:   cfg.App.Map.Attribution,
		DefaultCenter: service.LatLng(cfg.App.Map.DefaultCenter),
		DefaultZoom:   cfg.App.Map.DefaultZoom,
		LocationZoom:  cfg.App.Map.LocationZoom,
	}

	s := &Server{
		config:     cfg,
		mux:        mux,
		humaAPI:    humaAPI,
		store:      store,
		layers:     layers,
		controller: controller,
		exporter:   exporter,
		caps:       caps,
		page:       page,
	}

	// REST routes
	handler := api.NewAPIHandler(&api.Services{Store: store, Layers: layers, Bus: bus})
	huma.AutoRegister(humaAPI, handler)

	// Reviewer SSE routes
	rev := reviewer.New(renderer, store, layers, controller, exporter, bus, caps, mapOpts)
	rev.RegisterRoutes(humaAPI)

	// KML artifact downloads
	mux.Handle("/kml/", exporter)

	// Static assets and the viewer page
	staticFS, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, err
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	mux.HandleFunc("/", s.handleViewer)

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// pageData carries the initial signals and capability flags into the
// viewer page template.
type pageData struct {
	Signals     template.JS
	ImageAttach bool
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	layers := s.layers.Get()
	signals, err := json.Marshal(map[string]any{
		"maptiles":          layers.MapTiles,
		"buildings":         layers.Buildings,
		"generatedpolygons": layers.GeneratedPolygons,
		"computedpolygon":   layers.ComputedPolygon,
		"truthpolygon":      layers.TruthPolygon,
		"infoexpanded":      false,
		"viewversion":       0,
		"mapview":           nil,
		"locationname":      "",
		"lat":               "", "lon": "", "radius": backend.DefaultRadius, "surs": "",
		"kmldownload": "", "kmlfilename": "", "kmlmode": "", "kmlnonce": 0,
		"error": "",
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.page.Execute(w, pageData{
		Signals:     template.JS(signals),
		ImageAttach: s.caps.Supports(capability.FileReader),
	})
}
