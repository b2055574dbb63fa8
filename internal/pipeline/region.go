package pipeline

import (
	"fmt"
	"image"

	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/ocr"
	"github.com/vanban-tech/vanban/internal/postprocess"
	"github.com/vanban-tech/vanban/internal/preprocess"
	"github.com/vanban-tech/vanban/internal/utils"
)

// Region is one processed document region: where it was found, what the
// detector thought it was and the extracted text.
type Region struct {
	Page        int          `json:"page"`
	Class       fields.Class `json:"class_id"`
	ClassName   string       `json:"class"`
	Confidence  float64      `json:"confidence"`
	Box         utils.Box    `json:"box"`
	OriginalBox utils.Box    `json:"original_box"`
	Text        string       `json:"text"`
}

// regionMargins returns the absolute crop margins (left, top, right,
// bottom) for a manually drawn region of the given class. Recipient lists
// and body text need wider margins so line starts are not clipped.
func regionMargins(class fields.Class) (left, top, right, bottom float64) {
	switch class {
	case fields.ClassRecipients:
		return 15, 10, 15, 10
	case fields.ClassContent:
		return 10, 10, 10, 10
	default:
		return 5, 5, 5, 5
	}
}

// ProcessRegion runs the extraction chain on one manually selected box of
// a page image: margin expansion, class preprocessing, recognition,
// reading order and postprocessing. It backs the interactive single
// region flow where a user draws a box and picks the class.
func (p *Pipeline) ProcessRegion(img image.Image, box utils.Box, class fields.Class) (string, error) {
	if img == nil {
		return "", fmt.Errorf("input image is nil")
	}
	if !class.Valid() {
		return "", fmt.Errorf("invalid region class %d", int(class))
	}

	bounds := img.Bounds()
	left, top, right, bottom := regionMargins(class)
	expanded := box.Expand(left, top, right, bottom, bounds.Dx(), bounds.Dy())
	crop := utils.CropImageBox(img, expanded)
	if crop.Bounds().Dx() < 10 || crop.Bounds().Dy() < 10 {
		return "", fmt.Errorf("selected region %0.fx%0.f is too small", expanded.Width(), expanded.Height())
	}

	engine, err := p.engineFactory()
	if err != nil {
		return "", fmt.Errorf("create recognition engine: %w", err)
	}
	defer func() { _ = engine.Close() }()

	text, err := p.recognizeRegion(engine, crop, class)
	if err != nil {
		return "", err
	}
	return text, nil
}

// recognizeRegion preprocesses a crop, recognizes it and reconstructs the
// class-appropriate text.
func (p *Pipeline) recognizeRegion(engine ocr.Engine, crop image.Image, class fields.Class) (string, error) {
	prepared, err := preprocess.Apply(crop, class)
	if err != nil {
		return "", fmt.Errorf("preprocess region: %w", err)
	}

	spans, err := engine.Recognize(prepared, ocr.LangsFor(class))
	if err != nil {
		return "", fmt.Errorf("recognize region: %w", err)
	}

	lines := ocr.Lines(spans, ocr.DefaultLineHeight)
	var raw string
	switch class {
	case fields.ClassIssueDate, fields.ClassRefNumber:
		// Short fields may wrap in the crop; flatten to one line.
		raw = ocr.JoinLinesFlat(lines)
	default:
		raw = ocr.JoinLines(lines)
	}
	return postprocess.Apply(class, raw), nil
}
