package kml

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/geoplat/locreview/internal/capability"
	"github.com/geoplat/locreview/internal/service"
)

const testKML = `<?xml version="1.0"?><kml><Placemark/></kml>`

func preparedResponse() *service.LocationResponse {
	return &service.LocationResponse{
		Name:    "Rathaus",
		KML:     testKML,
		KMLName: "Rathaus.kml",
	}
}

func TestTriggerBeforePrepare(t *testing.T) {
	e := NewExporter(capability.Modern())
	if _, err := e.Trigger(); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("err = %v, want ErrNotPrepared", err)
	}
}

func TestPrepareAndServe(t *testing.T) {
	e := NewExporter(capability.Modern())
	e.Prepare(preparedResponse())

	if !e.Available() {
		t.Fatal("artifact should be available")
	}

	dl, err := e.Trigger()
	if err != nil {
		t.Fatal(err)
	}
	if dl.Mode != ModeAnchor {
		t.Fatalf("mode = %q", dl.Mode)
	}
	if dl.Filename != "Rathaus.kml" {
		t.Fatalf("filename = %q", dl.Filename)
	}

	req := httptest.NewRequest("GET", dl.URL, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.google-earth.kml" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Rathaus.kml"` {
		t.Fatalf("disposition = %q", cd)
	}
	if rec.Body.String() != testKML {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestTriggerIdempotent(t *testing.T) {
	e := NewExporter(capability.Modern())
	e.Prepare(preparedResponse())

	first, err := e.Trigger()
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Trigger()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("plans differ: %+v vs %+v", first, second)
	}

	serve := func(url string) []byte {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))
		return rec.Body.Bytes()
	}
	if !bytes.Equal(serve(first.URL), serve(second.URL)) {
		t.Fatal("repeated downloads must be byte-identical")
	}
}

func TestLegacyUsesSaveBlob(t *testing.T) {
	e := NewExporter(capability.Legacy())
	e.Prepare(preparedResponse())

	dl, err := e.Trigger()
	if err != nil {
		t.Fatal(err)
	}
	if dl.Mode != ModeSaveBlob {
		t.Fatalf("mode = %q, want save_blob", dl.Mode)
	}
}

func TestMinimalHasNoArtifact(t *testing.T) {
	e := NewExporter(capability.Minimal())
	e.Prepare(preparedResponse())

	if e.Available() {
		t.Fatal("no blob support means no artifact")
	}
	if _, err := e.Trigger(); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("err = %v, want ErrNotPrepared", err)
	}
}

func TestNoDownloadPathUnsupported(t *testing.T) {
	// Blob support without any way to hand the file over: the artifact
	// exists but triggering must refuse.
	e := NewExporter(capability.Set{capability.Blob: true})
	e.Prepare(preparedResponse())

	if !e.Available() {
		t.Fatal("artifact should still be prepared")
	}
	if _, err := e.Trigger(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestPrepareClearsOnEmptyKML(t *testing.T) {
	e := NewExporter(capability.Modern())
	e.Prepare(preparedResponse())
	e.Prepare(&service.LocationResponse{Name: "NoKML"})

	if e.Available() {
		t.Fatal("a response without KML must clear the artifact")
	}

	e.Prepare(preparedResponse())
	e.Prepare(nil)
	if e.Available() {
		t.Fatal("a nil response must clear the artifact")
	}
}

func TestStaleTokenNotFound(t *testing.T) {
	e := NewExporter(capability.Modern())
	e.Prepare(preparedResponse())
	stale, err := e.Trigger()
	if err != nil {
		t.Fatal(err)
	}

	e.Prepare(&service.LocationResponse{Name: "Other", KML: "<kml/>", KMLName: "Other.kml"})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest("GET", stale.URL, nil))
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404 for a stale token", rec.Code)
	}
}
