// Package detector locates semantic regions on document page images.
package detector

import (
	"image"

	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/utils"
)

// Detection is one located region on a page image, in page pixel
// coordinates.
type Detection struct {
	Class      fields.Class `json:"class_id"`
	Confidence float64      `json:"confidence"`
	Box        utils.Box    `json:"box"`
}

// Detector finds class-tagged regions on a page image. Implementations
// are not required to be safe for concurrent use; the pipeline constructs
// one detector per worker.
type Detector interface {
	Detect(img image.Image) ([]Detection, error)
	Close() error
}

// Factory constructs a fresh detector, called lazily inside each worker
// goroutine so model loading does not block pipeline construction.
type Factory func() (Detector, error)
