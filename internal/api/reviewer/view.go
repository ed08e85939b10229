// Package reviewer contains the Datastar SSE handlers driving the viewer
// page: map and info refreshes, the two workflow dialogs, layer toggles,
// and the KML download trigger.
package reviewer

import (
	"context"
	"sync/atomic"

	"github.com/danielgtaylor/huma/v2"

	"github.com/geoplat/locreview/internal/capability"
	"github.com/geoplat/locreview/internal/humastar"
	"github.com/geoplat/locreview/internal/kml"
	"github.com/geoplat/locreview/internal/render"
	"github.com/geoplat/locreview/internal/service"
	"github.com/geoplat/locreview/internal/templates"
	"github.com/geoplat/locreview/internal/workflow"
)

// Handlers bundles the reviewer SSE endpoints and their dependencies.
type Handlers struct {
	humastar.Handler

	store      *service.ResponseStore
	layers     *service.LayerStore
	controller *workflow.Controller
	exporter   *kml.Exporter
	bus        *service.EventBus
	caps       capability.Probe
	mapOpts    render.MapOptions

	// viewVersion bumps a page signal so the info panel re-fetches
	// itself with its local expansion state after a response change.
	viewVersion atomic.Uint64
	// kmlNonce makes repeated download triggers observable to the page
	// even though the artifact URL has not changed.
	kmlNonce atomic.Uint64
}

// New creates the reviewer handler set.
func New(renderer *templates.Renderer, store *service.ResponseStore, layers *service.LayerStore,
	controller *workflow.Controller, exporter *kml.Exporter, bus *service.EventBus,
	caps capability.Probe, mapOpts render.MapOptions) *Handlers {
	return &Handlers{
		Handler:    humastar.Handler{Renderer: renderer},
		store:      store,
		layers:     layers,
		controller: controller,
		exporter:   exporter,
		bus:        bus,
		caps:       caps,
		mapOpts:    mapOpts,
	}
}

// RegisterRoutes registers all reviewer SSE routes.
func (h *Handlers) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/reviewer/view", h.View, huma.OperationTags("reviewer"))
	huma.Get(api, "/api/v1/reviewer/info", h.Info, huma.OperationTags("reviewer"))
	huma.Get(api, "/api/v1/reviewer/events", h.Events, huma.OperationTags("reviewer"))
	huma.Get(api, "/api/v1/reviewer/kml/trigger", h.TriggerKML, huma.OperationTags("reviewer"))

	huma.Post(api, "/api/v1/reviewer/layers", h.SetLayers, huma.OperationTags("reviewer"))

	huma.Post(api, "/api/v1/reviewer/dialogs/query/open", h.OpenQuery, huma.OperationTags("reviewer"))
	huma.Post(api, "/api/v1/reviewer/dialogs/query/submit", h.SubmitQuery, huma.OperationTags("reviewer"))
	huma.Post(api, "/api/v1/reviewer/dialogs/process/open", h.OpenProcess, huma.OperationTags("reviewer"))
	huma.Post(api, "/api/v1/reviewer/dialogs/process/submit", h.SubmitProcess, huma.OperationTags("reviewer"))
	huma.Post(api, "/api/v1/reviewer/dialogs/cancel", h.Cancel, huma.OperationTags("reviewer"))
	huma.Post(api, "/api/v1/reviewer/dialogs/retry", h.Retry, huma.OperationTags("reviewer"))
	huma.Post(api, "/api/v1/reviewer/dialogs/acknowledge", h.Acknowledge, huma.OperationTags("reviewer"))
}

// pushMap rebuilds the map view from the authoritative state and sends it
// as the mapview signal. The page tears down its previous map instance and
// reconstructs it from this view.
func (h *Handlers) pushMap(sse humastar.SSE) {
	view := render.BuildMapView(h.store.Get(), h.layers.Get(), h.mapOpts)
	sse.Signals(map[string]any{"mapview": view})
}

// pushInfo renders the info panel fragment.
func (h *Handlers) pushInfo(sse humastar.SSE, expanded bool) {
	view := render.BuildInfoView(h.store.Get(), expanded, h.exporter.Available())
	sse.Patch(h.Render("info-panel", view), "#info")
}

// InfoInput carries the panel's local expansion state.
type InfoInput struct {
	Expanded bool `query:"expanded" doc:"Render the expanded panel"`
}

// View sends the complete view on page load: map signal and info panel.
func (h *Handlers) View(ctx context.Context, input *InfoInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		h.pushMap(sse)
		h.pushInfo(sse, input.Expanded)
		sse.Patch(h.Render("layers-form", nil), "#layers")
		h.pushDialog(sse)
	}), nil
}

// Info re-renders only the info panel, used by the panel click toggle.
func (h *Handlers) Info(ctx context.Context, input *InfoInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		h.pushInfo(sse, input.Expanded)
	}), nil
}

// SetLayers applies the layer toggles from the page signals and rebuilds
// only the map. No backend round trip is involved.
func (h *Handlers) SetLayers(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}

	cfg := service.LayerConfig{
		MapTiles:          signals.Bool("maptiles"),
		Buildings:         signals.Bool("buildings"),
		GeneratedPolygons: signals.Bool("generatedpolygons"),
		ComputedPolygon:   signals.Bool("computedpolygon"),
		TruthPolygon:      signals.Bool("truthpolygon"),
	}

	return h.Stream(func(sse humastar.SSE) {
		if err := h.layers.Set(cfg); err != nil {
			sse.Error(err.Error())
			return
		}
		h.pushMap(sse)
	}), nil
}

// TriggerKML resolves the exporter's download plan and hands it to the
// page. Repeated triggers re-serve the identical artifact.
func (h *Handlers) TriggerKML(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		dl, err := h.exporter.Trigger()
		if err != nil {
			sse.Error("This feature cannot be used with this browser.")
			return
		}
		sse.Signals(map[string]any{
			"kmldownload": dl.URL,
			"kmlfilename": dl.Filename,
			"kmlmode":     string(dl.Mode),
			"kmlnonce":    h.kmlNonce.Add(1),
		})
	}), nil
}

// Events streams state-change refreshes to a connected page for as long as
// it stays open.
func (h *Handlers) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				h.pushMap(sse)
				if ev.Resource == "response" {
					sse.Signals(map[string]any{"viewversion": h.viewVersion.Add(1)})
				}
			}
		}
	}), nil
}
