package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQueryLocationNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("action"); got != "query_location_names" {
			t.Fatalf("action = %q", got)
		}
		w.Write([]byte(`{"result": "success", "data": ["Alpha", "Beta"]}`))
	}))
	defer srv.Close()

	names, err := New(srv.URL).QueryLocationNames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "Alpha" || names[1] != "Beta" {
		t.Fatalf("names = %v", names)
	}
}

func TestQueryLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("action"); got != "query_location" {
			t.Fatalf("action = %q", got)
		}
		if got := r.PostForm.Get("location_name"); got != "Beta" {
			t.Fatalf("location_name = %q", got)
		}
		w.Write([]byte(`{
			"result": "success", "type": "location",
			"data": {
				"name": "Beta",
				"point": [53.6, 9.9],
				"surs": {"smoking": "no"},
				"truth": {"polygon": [[0,0],[0,1],[1,1]], "tags": {}},
				"computed": {"polygon": [[0,0],[0,1],[1,0]], "tags": {}},
				"ways": {"w1": {"polygon": [[1,1],[1,2],[2,2]], "tags": {"building": "yes"}}},
				"kml": "<kml/>",
				"kml_name": "Beta.computed.kml"
			}
		}`))
	}))
	defer srv.Close()

	loc, err := New(srv.URL).QueryLocation(context.Background(), "Beta")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Name != "Beta" {
		t.Fatalf("name = %q", loc.Name)
	}
	if loc.Point.Lat() != 53.6 || loc.Point.Lng() != 9.9 {
		t.Fatalf("point = %v", loc.Point)
	}
	if loc.Truth == nil || loc.Computed == nil {
		t.Fatal("truth and computed should both be present")
	}
	if len(loc.Ways) != 1 || loc.Ways["w1"].Tags["building"] != "yes" {
		t.Fatalf("ways = %v", loc.Ways)
	}
	if loc.KML != "<kml/>" || loc.KMLName != "Beta.computed.kml" {
		t.Fatalf("kml = %q name = %q", loc.KML, loc.KMLName)
	}
}

func TestProcessLocationFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("action"); got != "process_location" {
			t.Fatalf("action = %q", got)
		}
		if got := r.PostForm.Get("radius"); got != "200" {
			t.Fatalf("radius = %q, want the default", got)
		}
		if r.PostForm.Has("image_base_64") {
			t.Fatal("image_base_64 should be omitted when no image was attached")
		}
		w.Write([]byte(`{"result": "success", "type": "location", "data": {"name": "Manual", "point": [1, 2], "surs": {}, "ways": {}, "kml": "<kml/>", "kml_name": "Manual.kml"}}`))
	}))
	defer srv.Close()

	loc, err := New(srv.URL).ProcessLocation(context.Background(), ProcessRequest{
		Lat: "1", Lon: "2", SURs: `smoking="no"`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if loc.Name != "Manual" {
		t.Fatalf("name = %q", loc.Name)
	}
}

func TestFailureReasonVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "failure", "reason": "out of bounds"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ProcessLocation(context.Background(), ProcessRequest{Lat: "91", Lon: "0"})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if remote.Reason != "out of bounds" {
		t.Fatalf("reason = %q, want it verbatim", remote.Reason)
	}
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `oops`},
		{"missing result", `{"data": []}`},
		{"wrong type", `{"result": "success", "type": "track", "data": {}}`},
		{"data not a location", `{"result": "success", "type": "location", "data": [1, 2]}`},
		{"location without name", `{"result": "success", "type": "location", "data": {"point": [0, 0]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).QueryLocation(context.Background(), "Alpha")
			var shape *ShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("err = %v, want ShapeError", err)
			}
		})
	}
}

func TestNamesShapeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "success", "data": {"not": "a list"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).QueryLocationNames(context.Background())
	var shape *ShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("err = %v, want ShapeError", err)
	}
}
