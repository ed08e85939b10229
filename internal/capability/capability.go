// Package capability isolates the host-environment feature checks the
// original client sprinkled inline (blob construction, anchor-click
// downloads, the legacy save-blob path, file reading for image attach).
// A probe is built once at startup and consumed by the KML exporter and
// the image-attach control.
package capability

import "strings"

// Feature is one probeable client capability.
type Feature string

const (
	// Blob gates constructing the downloadable KML artifact at all.
	Blob Feature = "blob"
	// AnchorDownload is the standard synthetic anchor-activation path.
	AnchorDownload Feature = "anchor_download"
	// SaveBlob is the legacy save-blob fallback of old IE-era clients.
	SaveBlob Feature = "save_blob"
	// FileReader gates the image-attach control of the process dialog.
	FileReader Feature = "file_reader"
)

// Probe answers whether a capability is supported.
type Probe interface {
	Supports(Feature) bool
}

// Set is a fixed capability set.
type Set map[Feature]bool

// Supports implements Probe.
func (s Set) Supports(f Feature) bool { return s[f] }

// Modern returns the capability set of a current browser: blobs, anchor
// downloads and file reading all work; the legacy save path is absent.
func Modern() Set {
	return Set{Blob: true, AnchorDownload: true, FileReader: true}
}

// Legacy returns the capability set of an IE-era client: blobs and the
// save-blob fallback exist, but anchor-click downloads do not.
func Legacy() Set {
	return Set{Blob: true, SaveBlob: true, FileReader: true}
}

// Minimal returns a client with no export or file-reading support at all.
// The KML link renders "Not available" and the image input is disabled.
func Minimal() Set {
	return Set{}
}

// FromProfile maps a configured profile name to a capability set.
// Unknown names fall back to the modern profile.
func FromProfile(name string) Set {
	switch name {
	case "legacy":
		return Legacy()
	case "minimal":
		return Minimal()
	default:
		return Modern()
	}
}

// Detect builds a capability set from a client user-agent string,
// recognizing the MSIE/Trident markers the original checked for.
func Detect(userAgent string) Set {
	if strings.Contains(userAgent, "MSIE") || strings.Contains(userAgent, "Trident/") {
		return Legacy()
	}
	return Modern()
}
