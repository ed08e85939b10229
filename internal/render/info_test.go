package render

import (
	"testing"

	"github.com/geoplat/locreview/internal/service"
)

func TestBuildInfoViewNoResponse(t *testing.T) {
	view := BuildInfoView(nil, true, true)
	if view.HasResponse {
		t.Fatal("no response means the fixed placeholder panel")
	}
	if view.Name != "" || view.Coordinates != "" || len(view.SURs) != 0 {
		t.Fatalf("view = %+v, want zero", view)
	}
}

func TestBuildInfoViewExpanded(t *testing.T) {
	resp := &service.LocationResponse{
		Name:          "Rathaus",
		Point:         service.LatLng{53.598192, 9.932419},
		ImageFilePath: "/images/rathaus.jpg",
		SURs:          map[string]string{"smoking": "no", "access": "yes"},
	}

	view := BuildInfoView(resp, true, true)

	if !view.HasResponse || !view.Expanded {
		t.Fatalf("view = %+v", view)
	}
	if view.Name != "Rathaus" {
		t.Fatalf("name = %q", view.Name)
	}
	if view.Coordinates != "53.598192, 9.932419" {
		t.Fatalf("coordinates = %q", view.Coordinates)
	}
	want := []TagRow{{"access", "yes"}, {"smoking", "no"}}
	if len(view.SURs) != len(want) {
		t.Fatalf("surs = %v", view.SURs)
	}
	for i, row := range view.SURs {
		if row != want[i] {
			t.Fatalf("sur %d = %v, want %v", i, row, want[i])
		}
	}
	if !view.KMLAvailable {
		t.Fatal("kml availability must pass through")
	}
	if view.ImagePath != "/images/rathaus.jpg" {
		t.Fatalf("image = %q", view.ImagePath)
	}
}

func TestBuildInfoViewCollapsedWithoutExtras(t *testing.T) {
	resp := &service.LocationResponse{Name: "Bare", Point: service.LatLng{1, 2}}

	view := BuildInfoView(resp, false, false)

	if view.Expanded {
		t.Fatal("expansion flag must pass through")
	}
	if view.KMLAvailable || view.ImagePath != "" {
		t.Fatalf("view = %+v, want no kml and no image", view)
	}
	if len(view.SURs) != 0 {
		t.Fatalf("surs = %v", view.SURs)
	}
}
