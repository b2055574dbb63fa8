// Package pipeline orchestrates region-based field extraction from
// Vietnamese administrative documents: page images are run through
// detection, per-class preprocessing, recognition and postprocessing, and
// the per-page results merge into one field result set.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/vanban-tech/vanban/internal/detector"
	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/ocr"
	"github.com/vanban-tech/vanban/internal/pdf"
	"github.com/vanban-tech/vanban/internal/postprocess"
	"github.com/vanban-tech/vanban/internal/preprocess"
	"github.com/vanban-tech/vanban/internal/utils"
)

// Pipeline extracts document fields from page images.
type Pipeline struct {
	config          Config
	detectorFactory detector.Factory
	engineFactory   ocr.EngineFactory
	progress        ProgressCallback
	logger          *slog.Logger
}

// DocumentResult is the outcome of processing one document.
type DocumentResult struct {
	Fields   fields.ResultSet `json:"fields"`
	Regions  []Region         `json:"regions"`
	Pages    int              `json:"pages"`
	Duration time.Duration    `json:"duration_ns"`
}

// pageOutcome is the per-page intermediate result.
type pageOutcome struct {
	fields  fields.ResultSet
	regions []Region
}

// ProcessDocument extracts fields from a PDF document or a single page
// image file. Pages are processed in parallel for multi-page documents;
// results merge first-non-empty-wins in page order. Cancellation is
// cooperative at page boundaries.
func (p *Pipeline) ProcessDocument(ctx context.Context, path string) (*DocumentResult, error) {
	start := time.Now()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}

	pages, err := p.loadPages(path)
	if err != nil {
		return nil, err
	}

	p.progress.OnStart(len(pages))
	p.progress.OnProgress(progressLoadEnd, "Đang xử lý các trang...")

	outcomes, err := p.processPages(ctx, pages)
	if err != nil {
		return nil, err
	}

	p.progress.OnProgress(progressOCREnd, "Đang hoàn thiện kết quả...")

	result := &DocumentResult{Pages: len(pages)}
	for _, outcome := range outcomes {
		result.Fields.Merge(outcome.fields)
		result.Regions = append(result.Regions, outcome.regions...)
	}
	result.Fields.Finalize()
	sort.SliceStable(result.Regions, func(i, j int) bool {
		return result.Regions[i].Page < result.Regions[j].Page
	})
	result.Duration = time.Since(start)

	p.progress.OnProgress(progressComplete, "Hoàn thành!")
	p.progress.OnComplete()
	return result, nil
}

// ProcessImages extracts fields from already loaded page images.
func (p *Pipeline) ProcessImages(ctx context.Context, images []image.Image) (*DocumentResult, error) {
	start := time.Now()
	if len(images) == 0 {
		return nil, fmt.Errorf("no page images provided")
	}

	p.progress.OnStart(len(images))
	p.progress.OnProgress(progressLoadEnd, "Đang xử lý các trang...")

	outcomes, err := p.processPages(ctx, images)
	if err != nil {
		return nil, err
	}

	result := &DocumentResult{Pages: len(images)}
	for _, outcome := range outcomes {
		result.Fields.Merge(outcome.fields)
		result.Regions = append(result.Regions, outcome.regions...)
	}
	result.Fields.Finalize()
	sort.SliceStable(result.Regions, func(i, j int) bool {
		return result.Regions[i].Page < result.Regions[j].Page
	})
	result.Duration = time.Since(start)

	p.progress.OnProgress(progressComplete, "Hoàn thành!")
	p.progress.OnComplete()
	return result, nil
}

// loadPages reads document pages, reporting progress in the loading band.
func (p *Pipeline) loadPages(path string) ([]image.Image, error) {
	p.progress.OnProgress(0, "Khởi tạo...")

	if pdf.IsPDF(path) {
		pages, err := pdf.Pages(path, p.config.RenderDPI)
		if err != nil {
			return nil, fmt.Errorf("load document pages: %w", err)
		}
		if len(pages) == 0 {
			return nil, fmt.Errorf("document has no extractable pages")
		}
		images := make([]image.Image, len(pages))
		for i, page := range pages {
			images[i] = page.Image
			p.progress.OnProgress(loadPercent(i+1, len(pages)),
				fmt.Sprintf("Đang nạp trang %d/%d...", i+1, len(pages)))
		}
		return images, nil
	}

	img, err := pdf.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load page image: %w", err)
	}
	p.progress.OnProgress(progressLoadEnd, "Đang nạp trang 1/1...")
	return []image.Image{img}, nil
}

// processPages fans pages out across workers, or runs sequentially for a
// single page or a single worker.
func (p *Pipeline) processPages(ctx context.Context, images []image.Image) ([]pageOutcome, error) {
	if len(images) == 1 || p.config.Workers == 1 {
		return p.processPagesSequential(ctx, images)
	}
	return p.processPagesParallel(ctx, images)
}

func (p *Pipeline) processPagesSequential(ctx context.Context, images []image.Image) ([]pageOutcome, error) {
	w, err := newPageWorker(p)
	if err != nil {
		return nil, err
	}
	defer w.close()

	outcomes := make([]pageOutcome, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, err := w.processPage(img, i)
		if err != nil {
			p.logger.Error("page processing failed", "page", i, "error", err)
			p.progress.OnError(i, err)
			outcome = pageOutcome{}
		}
		outcomes[i] = outcome
		p.progress.OnProgress(ocrPercent(i+1, len(images)),
			fmt.Sprintf("Đang OCR trang %d/%d...", i+1, len(images)))
	}
	return outcomes, nil
}

// processPage runs the full region chain on one page image.
func (w *pageWorker) processPage(img image.Image, pageIndex int) (pageOutcome, error) {
	if img == nil {
		return pageOutcome{}, fmt.Errorf("page %d image is nil", pageIndex)
	}

	w.pipeline.dumpPage(img, pageIndex)

	detections, err := w.detector.Detect(img)
	if err != nil {
		// A failed page degrades to an empty result, not a document error.
		w.pipeline.logger.Error("region detection failed", "page", pageIndex, "error", err)
		return pageOutcome{}, nil
	}

	bounds := img.Bounds()
	outcome := pageOutcome{}
	for _, det := range detections {
		if det.Confidence <= w.pipeline.config.ConfidenceThreshold {
			continue
		}

		padded := det.Box.ExpandRelative(0.15, 0.05, 0.05, bounds.Dx(), bounds.Dy())
		crop := utils.CropImageBox(img, padded)
		w.pipeline.dumpRegion(crop, pageIndex, det, "original")

		text := w.readRegion(crop, det, pageIndex)

		outcome.regions = append(outcome.regions, Region{
			Page:        pageIndex,
			Class:       det.Class,
			ClassName:   det.Class.Key(),
			Confidence:  det.Confidence,
			Box:         padded,
			OriginalBox: det.Box,
			Text:        text,
		})
		if text != "" {
			outcome.fields.Set(det.Class, text)
		}
	}
	return outcome, nil
}

// readRegion preprocesses, recognizes and postprocesses one region crop.
// Region-level failures log and yield empty text.
func (w *pageWorker) readRegion(crop image.Image, det detector.Detection, pageIndex int) string {
	prepared, err := preprocess.Apply(crop, det.Class)
	if err != nil {
		w.pipeline.logger.Warn("region preprocessing failed",
			"page", pageIndex, "class", det.Class.Key(), "error", err)
		return ""
	}
	w.pipeline.dumpRegion(prepared, pageIndex, det, "processed")

	spans, err := w.engine.Recognize(prepared, ocr.LangsFor(det.Class))
	if err != nil {
		w.pipeline.logger.Warn("region recognition failed",
			"page", pageIndex, "class", det.Class.Key(), "error", err)
		return ""
	}

	lines := ocr.Lines(spans, ocr.DefaultLineHeight)
	var raw string
	switch det.Class {
	case fields.ClassIssueDate, fields.ClassRefNumber:
		raw = ocr.JoinLinesFlat(lines)
	default:
		raw = ocr.JoinLines(lines)
	}
	return postprocess.Apply(det.Class, raw)
}
