// Package api defines the Huma REST routes of the reviewer: health, the
// current client state, and the layer configuration.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/geoplat/locreview/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Store  *service.ResponseStore
	Layers *service.LayerStore
	Bus    *service.EventBus
}

// Types

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type StateBody struct {
	HasResponse bool   `json:"has_response" doc:"Whether a location response is loaded"`
	Name        string `json:"name,omitempty" doc:"Name of the loaded location"`
	KMLName     string `json:"kml_name,omitempty" doc:"Suggested KML filename of the loaded location"`
}

type LayersOutput struct {
	Body service.LayerConfig
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterState registers the current-state route.
func (h *APIHandler) RegisterState(api huma.API) {
	huma.Get(api, "/api/v1/state", h.GetState, huma.OperationTags("state"))
}

// RegisterLayers registers layer configuration routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/layers", h.PutLayers, huma.OperationTags("layers"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetState(ctx context.Context, input *struct{}) (*struct{ Body StateBody }, error) {
	body := StateBody{}
	if resp := h.svc.Store.Get(); resp != nil {
		body.HasResponse = true
		body.Name = resp.Name
		body.KMLName = resp.KMLName
	}
	return &struct{ Body StateBody }{Body: body}, nil
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*LayersOutput, error) {
	return &LayersOutput{Body: h.svc.Layers.Get()}, nil
}

func (h *APIHandler) PutLayers(ctx context.Context, input *struct{ Body service.LayerConfig }) (*LayersOutput, error) {
	if err := h.svc.Layers.Set(input.Body); err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	if h.svc.Bus != nil {
		h.svc.Bus.Publish(service.Event{Resource: "layers"})
	}
	return &LayersOutput{Body: h.svc.Layers.Get()}, nil
}
