// Package backend implements the wire contract of the remote
// location-processing service: a single endpoint taking form-encoded
// fields with an "action" discriminator and answering a JSON envelope.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/geoplat/locreview/internal/service"
)

// Actions understood by the backend.
const (
	ActionQueryLocationNames = "query_location_names"
	ActionQueryLocation      = "query_location"
	ActionProcessLocation    = "process_location"
)

// DefaultRadius is the pre-filled Overpass radius for process submissions.
const DefaultRadius = "200"

// RemoteError is a non-success result from the backend. Reason carries the
// server-supplied string verbatim for display in the failure dialog.
type RemoteError struct {
	Result string
	Reason string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend result %q: %s", e.Result, e.Reason)
}

// ShapeError signals a response that decoded but does not match the
// expected payload shape. The client fails fast on these instead of
// rendering garbage.
type ShapeError struct {
	Detail string
}

func (e *ShapeError) Error() string {
	return "unexpected backend response shape: " + e.Detail
}

// ProcessRequest carries the fields of a process_location submission.
// ImageBase64 holds the photo re-encoded as a data URL, or empty when no
// image was attached.
type ProcessRequest struct {
	Lat         string
	Lon         string
	Radius      string
	SURs        string
	ImageBase64 string
}

// Client talks to the location backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client for the given endpoint URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// envelope is the common response wrapper. Data stays raw until the result
// has been checked.
type envelope struct {
	Result string          `json:"result"`
	Reason string          `json:"reason"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

func (c *Client) post(ctx context.Context, fields url.Values) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned HTTP %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ShapeError{Detail: err.Error()}
	}
	if env.Result == "" {
		return nil, &ShapeError{Detail: `missing "result" field`}
	}
	if env.Result != "success" {
		return nil, &RemoteError{Result: env.Result, Reason: env.Reason}
	}
	return &env, nil
}

// QueryLocationNames returns the ordered list of known location names,
// used to populate the query dialog's selection control.
func (c *Client) QueryLocationNames(ctx context.Context) ([]string, error) {
	env, err := c.post(ctx, url.Values{"action": {ActionQueryLocationNames}})
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(env.Data, &names); err != nil {
		return nil, &ShapeError{Detail: "data is not a list of names: " + err.Error()}
	}
	return names, nil
}

// QueryLocation retrieves the full response for a known location name.
func (c *Client) QueryLocation(ctx context.Context, locationName string) (*service.LocationResponse, error) {
	env, err := c.post(ctx, url.Values{
		"action":        {ActionQueryLocation},
		"location_name": {locationName},
	})
	if err != nil {
		return nil, err
	}
	return decodeLocation(env)
}

// ProcessLocation submits a new location for processing and returns the
// computed response.
func (c *Client) ProcessLocation(ctx context.Context, req ProcessRequest) (*service.LocationResponse, error) {
	radius := req.Radius
	if radius == "" {
		radius = DefaultRadius
	}
	fields := url.Values{
		"action": {ActionProcessLocation},
		"lat":    {req.Lat},
		"lon":    {req.Lon},
		"radius": {radius},
		"surs":   {req.SURs},
	}
	if req.ImageBase64 != "" {
		fields.Set("image_base_64", req.ImageBase64)
	}

	env, err := c.post(ctx, fields)
	if err != nil {
		return nil, err
	}
	return decodeLocation(env)
}

func decodeLocation(env *envelope) (*service.LocationResponse, error) {
	if env.Type != "location" {
		return nil, &ShapeError{Detail: fmt.Sprintf("type %q, want \"location\"", env.Type)}
	}

	var loc service.LocationResponse
	if err := json.Unmarshal(env.Data, &loc); err != nil {
		return nil, &ShapeError{Detail: "data is not a location: " + err.Error()}
	}
	if loc.Name == "" {
		return nil, &ShapeError{Detail: "location has no name"}
	}
	return &loc, nil
}
