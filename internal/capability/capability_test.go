package capability

import "testing"

func TestFromProfile(t *testing.T) {
	cases := []struct {
		name   string
		anchor bool
		save   bool
	}{
		{"modern", true, false},
		{"legacy", false, true},
		{"minimal", false, false},
		{"", true, false},
		{"nonsense", true, false},
	}

	for _, tc := range cases {
		set := FromProfile(tc.name)
		if got := set.Supports(AnchorDownload); got != tc.anchor {
			t.Errorf("FromProfile(%q) anchor = %v, want %v", tc.name, got, tc.anchor)
		}
		if got := set.Supports(SaveBlob); got != tc.save {
			t.Errorf("FromProfile(%q) save_blob = %v, want %v", tc.name, got, tc.save)
		}
	}
}

func TestMinimalSupportsNothing(t *testing.T) {
	set := Minimal()
	for _, f := range []Feature{Blob, AnchorDownload, SaveBlob, FileReader} {
		if set.Supports(f) {
			t.Errorf("minimal must not support %s", f)
		}
	}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		ua     string
		legacy bool
	}{
		{"Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko", true},
		{"Mozilla/4.0 (compatible; MSIE 8.0; Windows NT 6.1)", true},
		{"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", false},
		{"", false},
	}

	for _, tc := range cases {
		set := Detect(tc.ua)
		if got := set.Supports(SaveBlob); got != tc.legacy {
			t.Errorf("Detect(%q) save_blob = %v, want %v", tc.ua, got, tc.legacy)
		}
		if !set.Supports(Blob) || !set.Supports(FileReader) {
			t.Errorf("Detect(%q) must keep blob and file reading", tc.ua)
		}
	}
}
