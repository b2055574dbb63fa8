// Package ocr defines the text recognition engine contract and the
// reading-order reconstruction applied to its raw output.
package ocr

import (
	"image"

	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/utils"
)

// Span is one recognized fragment of text with its location in the
// preprocessed region image.
type Span struct {
	Box        utils.Box
	Text       string
	Confidence float64
}

// Engine recognizes text fragments in a region image. Implementations are
// not required to be safe for concurrent use; the pipeline constructs one
// engine per worker and never shares instances.
type Engine interface {
	Recognize(img image.Image, langs []string) ([]Span, error)
	Close() error
}

// EngineFactory constructs a fresh engine. Workers call it lazily on
// first use so model loading happens inside the worker goroutine.
type EngineFactory func() (Engine, error)

// LangsFor returns the recognition languages for a region class.
// Recipient lists, reference numbers and document type headers mix in
// Latin abbreviations and punctuation, so English is added for those.
func LangsFor(class fields.Class) []string {
	switch class {
	case fields.ClassRecipients, fields.ClassRefNumber, fields.ClassDocType:
		return []string{"vi", "en"}
	default:
		return []string{"vi"}
	}
}
