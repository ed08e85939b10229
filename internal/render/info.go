package render

import "github.com/geoplat/locreview/internal/service"

// InfoView is the info panel's view model, rendered by the "info-panel"
// template fragment. Expansion is local UI state toggled by clicking the
// panel; it is never persisted.
type InfoView struct {
	HasResponse bool
	Expanded    bool

	Name        string
	Coordinates string
	SURs        []TagRow

	// KMLAvailable selects the "Download" vs "Not available" label.
	KMLAvailable bool
	// ImagePath is empty when no photo is available.
	ImagePath string
}

// BuildInfoView derives the info panel view. A nil response yields the
// fixed "No information available." panel regardless of expansion.
func BuildInfoView(resp *service.LocationResponse, expanded, kmlAvailable bool) InfoView {
	if resp == nil {
		return InfoView{}
	}
	return InfoView{
		HasResponse:  true,
		Expanded:     expanded,
		Name:         resp.Name,
		Coordinates:  resp.Point.String(),
		SURs:         sortedRows(resp.SURs),
		KMLAvailable: kmlAvailable,
		ImagePath:    resp.ImageFilePath,
	}
}
