package pipeline

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanban-tech/vanban/internal/detector"
	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/ocr"
	"github.com/vanban-tech/vanban/internal/utils"
)

// fakeDetector scripts detections per page, keyed by the page image
// width so workers can be exercised in parallel.
type fakeDetector struct {
	byPageWidth map[int][]detector.Detection
}

func (f *fakeDetector) Detect(img image.Image) ([]detector.Detection, error) {
	return f.byPageWidth[img.Bounds().Dx()], nil
}

func (f *fakeDetector) Close() error { return nil }

// fakeEngine scripts recognition output keyed by the preprocessed region
// width, which is a deterministic function of the detection box width.
type fakeEngine struct {
	byRegionWidth map[int][]ocr.Span
}

func (f *fakeEngine) Recognize(img image.Image, langs []string) ([]ocr.Span, error) {
	return f.byRegionWidth[img.Bounds().Dx()], nil
}

func (f *fakeEngine) Close() error { return nil }

// preparedWidth computes the preprocessed image width for a detection box
// of width w: side padding, crop, 2x upscale and the 10px border.
func preparedWidth(w float64) int {
	side := math.Trunc(w * 0.05)
	return int(w+2*side)*2 + 20
}

func testPage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	return img
}

func boxAt(w, h float64) utils.Box {
	return utils.NewBox(200, 200, 200+w, 200+h)
}

func span(x, y float64, text string) ocr.Span {
	return ocr.Span{Box: utils.NewBox(x, y, x+50, y+14), Text: text, Confidence: 0.9}
}

// newTestPipeline wires three scripted pages:
//
//	page 0 (width 1000): doc type "QUYẾT ĐỊNH" at 0.9
//	page 1 (width 1001): doc type "CÔNG VĂN" at 0.8, reference number at
//	  0.95, urgency at exactly 0.5 (must be dropped by the strict cutoff)
//	page 2 (width 1002): urgency "Hỏa tốc" at 0.7 and a two-line
//	  authority block with an OCR typo at 0.9
func newTestPipeline(t *testing.T, workers int, progress ProgressCallback) *Pipeline {
	t.Helper()

	det := &fakeDetector{byPageWidth: map[int][]detector.Detection{
		1000: {
			{Class: fields.ClassDocType, Confidence: 0.9, Box: boxAt(100, 40)},
		},
		1001: {
			{Class: fields.ClassDocType, Confidence: 0.8, Box: boxAt(120, 40)},
			{Class: fields.ClassRefNumber, Confidence: 0.95, Box: boxAt(140, 40)},
			{Class: fields.ClassUrgency, Confidence: 0.5, Box: boxAt(160, 40)},
		},
		1002: {
			{Class: fields.ClassUrgency, Confidence: 0.7, Box: boxAt(60, 20)},
			{Class: fields.ClassAuthority, Confidence: 0.9, Box: boxAt(200, 40)},
		},
	}}

	engine := &fakeEngine{byRegionWidth: map[int][]ocr.Span{
		preparedWidth(100): {span(10, 10, "QUYẾT ĐỊNH")},
		preparedWidth(120): {span(10, 10, "CÔNG VĂN")},
		preparedWidth(140): {span(10, 10, "123/QĐ—UBND")},
		preparedWidth(60):  {span(10, 10, "Hỏa tốc")},
		preparedWidth(200): {span(10, 10, "UBND TINH NGHỆ AN"), span(10, 60, "SỞ NỘI VỤ")},
	}}

	if progress == nil {
		progress = NoOpProgress{}
	}
	p, err := NewBuilder().
		WithDetectorFactory(func() (detector.Detector, error) { return det, nil }).
		WithEngineFactory(func() (ocr.Engine, error) { return engine, nil }).
		WithWorkers(workers).
		WithProgress(progress).
		Build()
	require.NoError(t, err)
	return p
}

func threeTestPages() []image.Image {
	return []image.Image{
		testPage(1000, 800),
		testPage(1001, 800),
		testPage(1002, 800),
	}
}

func TestProcessImages_EndToEnd(t *testing.T) {
	p := newTestPipeline(t, 1, nil)

	result, err := p.ProcessImages(context.Background(), threeTestPages())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, "QUYẾT ĐỊNH", result.Fields.DocType, "page 0 wins over page 1")
	assert.Equal(t, "123/QĐ-UBND", result.Fields.RefNumber, "em dash normalized")
	assert.Equal(t, "Hỏa tốc", result.Fields.Urgency)
	assert.Equal(t, "UBND TỈNH NGHỆ AN", result.Fields.AuthorityUpper, "typo fixed")
	assert.Equal(t, "SỞ NỘI VỤ", result.Fields.AuthorityLower)
	assert.Empty(t, result.Fields.Content)
}

func TestProcessImages_StrictConfidenceCutoff(t *testing.T) {
	p := newTestPipeline(t, 1, nil)

	result, err := p.ProcessImages(context.Background(), threeTestPages())
	require.NoError(t, err)

	// Page 1's urgency detection sits exactly at the threshold and must
	// not appear; 5 regions survive in total.
	require.Len(t, result.Regions, 5)
	for _, region := range result.Regions {
		assert.Greater(t, region.Confidence, 0.5)
	}
}

func TestProcessImages_RegionsSortedByPage(t *testing.T) {
	p := newTestPipeline(t, 3, nil)

	result, err := p.ProcessImages(context.Background(), threeTestPages())
	require.NoError(t, err)

	prev := -1
	for _, region := range result.Regions {
		assert.GreaterOrEqual(t, region.Page, prev)
		prev = region.Page
	}
}

func TestProcessImages_ParallelDeterminism(t *testing.T) {
	reference, err := newTestPipeline(t, 1, nil).ProcessImages(context.Background(), threeTestPages())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		p := newTestPipeline(t, 3, nil)
		result, err := p.ProcessImages(context.Background(), threeTestPages())
		require.NoError(t, err)
		assert.Equal(t, reference.Fields, result.Fields)
		assert.Len(t, result.Regions, len(reference.Regions))
	}
}

func TestProcessImages_UrgencyDefault(t *testing.T) {
	p := newTestPipeline(t, 1, nil)

	// Only page 0 (no urgency detection) is processed.
	result, err := p.ProcessImages(context.Background(), []image.Image{testPage(1000, 800)})
	require.NoError(t, err)
	assert.Equal(t, fields.UrgencyDefault, result.Fields.Urgency)
}

func TestProcessImages_Cancellation(t *testing.T) {
	p := newTestPipeline(t, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessImages(ctx, threeTestPages())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessImages_NoImages(t *testing.T) {
	p := newTestPipeline(t, 1, nil)
	_, err := p.ProcessImages(context.Background(), nil)
	assert.Error(t, err)
}

// progressRecorder collects progress updates for assertions.
type progressRecorder struct {
	mu       sync.Mutex
	started  bool
	complete bool
	percents []int
}

func (r *progressRecorder) OnStart(totalPages int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
}

func (r *progressRecorder) OnProgress(percent int, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percents = append(r.percents, percent)
}

func (r *progressRecorder) OnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complete = true
}

func (r *progressRecorder) OnError(page int, err error) {}

func TestProcessImages_ProgressPhases(t *testing.T) {
	rec := &progressRecorder{}
	p := newTestPipeline(t, 1, rec)

	_, err := p.ProcessImages(context.Background(), threeTestPages())
	require.NoError(t, err)

	assert.True(t, rec.started)
	assert.True(t, rec.complete)
	require.NotEmpty(t, rec.percents)

	prev := 0
	for _, pct := range rec.percents {
		assert.GreaterOrEqual(t, pct, prev, "progress must not go backwards")
		assert.LessOrEqual(t, pct, 100)
		prev = pct
	}
	assert.Equal(t, 100, rec.percents[len(rec.percents)-1])
}

func TestProcessDocument_MissingFile(t *testing.T) {
	p := newTestPipeline(t, 1, nil)
	_, err := p.ProcessDocument(context.Background(), "/nonexistent/doc.pdf")
	assert.Error(t, err)
}

func TestPageWorker_DetectorFailureDegradesToEmptyPage(t *testing.T) {
	failing := &failingDetector{}
	engine := &fakeEngine{}

	p, err := NewBuilder().
		WithDetectorFactory(func() (detector.Detector, error) { return failing, nil }).
		WithEngineFactory(func() (ocr.Engine, error) { return engine, nil }).
		WithWorkers(1).
		Build()
	require.NoError(t, err)

	result, err := p.ProcessImages(context.Background(), []image.Image{testPage(1000, 800)})
	require.NoError(t, err)
	assert.Empty(t, result.Regions)
	assert.Equal(t, fields.UrgencyDefault, result.Fields.Urgency)
}

type failingDetector struct{}

func (f *failingDetector) Detect(img image.Image) ([]detector.Detection, error) {
	return nil, assert.AnError
}

func (f *failingDetector) Close() error { return nil }
