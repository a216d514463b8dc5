package verify

import "github.com/octans/frontcheck/pkg/models"

// DefaultChecks returns the gallery and import page checks, in run order.
func DefaultChecks() []models.Check {
	return []models.Check{
		{
			Name:       "gallery",
			Path:       "/gallery",
			Condition:  ".gallery-container",
			Screenshot: "gallery_initial.png",
		},
		{
			Name:       "import",
			Path:       "/import",
			Condition:  "text=Auto Archive",
			Screenshot: "import_auto_archive.png",
		},
	}
}
