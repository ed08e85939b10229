// Package kml turns a location response's embedded KML text into a
// downloadable artifact and serves it over an ephemeral URL.
package kml

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/geoplat/locreview/internal/capability"
	"github.com/geoplat/locreview/internal/service"
)

// MIMEType is the media type of the exported artifact.
const MIMEType = "application/vnd.google-earth.kml"

var (
	// ErrNotPrepared means no artifact exists for the current response.
	ErrNotPrepared = errors.New("no kml artifact prepared")
	// ErrUnsupported means the client environment has no usable
	// download path for the artifact.
	ErrUnsupported = errors.New("kml download cannot be used in this environment")
)

// Artifact is the prepared download: the raw KML bytes, the suggested
// filename, and the ephemeral token addressing it.
type Artifact struct {
	Name  string
	Data  []byte
	Token string
}

// DownloadMode selects how the client is told to perform the download.
type DownloadMode string

const (
	// ModeAnchor is a programmatic, synthetic anchor activation.
	ModeAnchor DownloadMode = "anchor"
	// ModeSaveBlob is the legacy save-blob fallback.
	ModeSaveBlob DownloadMode = "save_blob"
)

// Download is the plan returned by Trigger.
type Download struct {
	Mode     DownloadMode
	URL      string
	Filename string
}

// Exporter prepares and triggers KML downloads. Prepare is hooked into the
// ordered response-changed refresh; Trigger is idempotent between
// preparations and re-serves the identical artifact.
type Exporter struct {
	caps capability.Probe

	mu       sync.RWMutex
	artifact *Artifact
}

// NewExporter creates an exporter backed by the given capability probe.
func NewExporter(caps capability.Probe) *Exporter {
	return &Exporter{caps: caps}
}

// Prepare rebuilds the artifact from a response. With no blob support, or
// no response, the artifact is simply unavailable and the info panel
// reflects that.
func (e *Exporter) Prepare(resp *service.LocationResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if resp == nil || resp.KML == "" || !e.caps.Supports(capability.Blob) {
		e.artifact = nil
		return
	}

	sum := sha256.Sum256([]byte(resp.KMLName + "\x00" + resp.KML))
	e.artifact = &Artifact{
		Name:  resp.KMLName,
		Data:  []byte(resp.KML),
		Token: hex.EncodeToString(sum[:8]),
	}
}

// Artifact returns the current artifact, or false when none is prepared.
func (e *Exporter) Artifact() (Artifact, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.artifact == nil {
		return Artifact{}, false
	}
	return *e.artifact, true
}

// Available reports whether a download can currently be offered.
func (e *Exporter) Available() bool {
	_, ok := e.Artifact()
	return ok
}

// Trigger returns the download plan for the prepared artifact without
// re-preparing it: anchor activation when supported, the legacy save-blob
// path otherwise, or ErrUnsupported when neither exists.
func (e *Exporter) Trigger() (Download, error) {
	art, ok := e.Artifact()
	if !ok {
		return Download{}, ErrNotPrepared
	}

	switch {
	case e.caps.Supports(capability.AnchorDownload):
		return Download{Mode: ModeAnchor, URL: "/kml/" + art.Token, Filename: art.Name}, nil
	case e.caps.Supports(capability.SaveBlob):
		return Download{Mode: ModeSaveBlob, URL: "/kml/" + art.Token, Filename: art.Name}, nil
	default:
		return Download{}, ErrUnsupported
	}
}

// ServeHTTP serves /kml/{token} with the artifact bytes, the KML media
// type and the suggested filename. A stale or unknown token is a 404.
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/kml/")

	art, ok := e.Artifact()
	if !ok || token == "" || token != art.Token {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	w.Write(art.Data)
}
