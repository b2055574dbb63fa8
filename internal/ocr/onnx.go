package ocr

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/vanban-tech/vanban/internal/onnx"
	"github.com/vanban-tech/vanban/internal/utils"
)

// ONNXConfig holds the recognition model configuration.
type ONNXConfig struct {
	ModelPath   string
	DictPath    string
	LibraryPath string
	ImageHeight int
	MaxWidth    int
	NumThreads  int
}

// DefaultONNXConfig returns the recognition defaults.
func DefaultONNXConfig() ONNXConfig {
	return ONNXConfig{
		ImageHeight: 48,
		MaxWidth:    1600,
	}
}

// Validate checks required fields.
func (c ONNXConfig) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("recognition model path is empty")
	}
	if c.DictPath == "" {
		return fmt.Errorf("recognition dictionary path is empty")
	}
	if c.ImageHeight <= 0 {
		return fmt.Errorf("invalid recognition image height %d", c.ImageHeight)
	}
	return nil
}

// ONNXEngine recognizes text with a CTC recognition model. The charset
// covers accented Vietnamese and plain Latin, so the language hints do
// not change the model; they exist for engines backed by per-language
// models.
type ONNXEngine struct {
	mu      sync.Mutex
	config  ONNXConfig
	charset *Charset
	session *ort.DynamicAdvancedSession
}

// NewONNXEngine loads the recognition model and its dictionary.
func NewONNXEngine(config ONNXConfig) (*ONNXEngine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := onnx.EnsureRuntime(config.LibraryPath); err != nil {
		return nil, err
	}

	charset, err := LoadCharset(config.DictPath)
	if err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect recognition model: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("recognition model has no inputs or outputs")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer func() { _ = options.Destroy() }()
	if config.NumThreads > 0 {
		if err := options.SetIntraOpNumThreads(config.NumThreads); err != nil {
			return nil, fmt.Errorf("set session threads: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(config.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, options)
	if err != nil {
		return nil, fmt.Errorf("create recognition session: %w", err)
	}

	return &ONNXEngine{config: config, charset: charset, session: session}, nil
}

// Recognize splits the image into text lines and runs the recognition
// model on each, returning one span per line.
func (e *ONNXEngine) Recognize(img image.Image, langs []string) ([]Span, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	gray := utils.ToGray(img)
	strips := segmentLines(gray)

	var spans []Span
	for _, strip := range strips {
		text, confidence, err := e.recognizeLine(gray, strip)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		spans = append(spans, Span{
			Box: utils.NewBox(float64(strip.Min.X), float64(strip.Min.Y),
				float64(strip.Max.X), float64(strip.Max.Y)),
			Text:       text,
			Confidence: confidence,
		})
	}
	return spans, nil
}

// recognizeLine runs the model on one line strip.
func (e *ONNXEngine) recognizeLine(gray *image.Gray, strip image.Rectangle) (string, float64, error) {
	line := imaging.Crop(gray, strip)
	height := e.config.ImageHeight
	scale := float64(height) / float64(strip.Dy())
	width := max(1, int(float64(strip.Dx())*scale))
	if e.config.MaxWidth > 0 {
		width = min(width, e.config.MaxWidth)
	}

	tensor, err := onnx.ImageToNCHW(line, width, height)
	if err != nil {
		return "", 0, fmt.Errorf("prepare recognition input: %w", err)
	}
	input, err := ort.NewTensor(ort.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return "", 0, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = input.Destroy() }()

	outputs := []ort.Value{nil}
	e.mu.Lock()
	err = e.session.Run([]ort.Value{input}, outputs)
	e.mu.Unlock()
	if err != nil {
		return "", 0, fmt.Errorf("recognition inference: %w", err)
	}
	defer func() { _ = outputs[0].Destroy() }()

	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return "", 0, fmt.Errorf("unexpected recognition output type %T", outputs[0])
	}

	sequences := decodeCTCGreedy(logits.GetData(), logits.GetShape(), 0)
	if len(sequences) == 0 {
		return "", 0, fmt.Errorf("unexpected recognition output shape %v", logits.GetShape())
	}
	text := e.charset.Decode(sequences[0].classes)
	return text, meanConfidence(sequences[0].probs), nil
}

// Close releases the session.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}

const (
	inkThreshold   = 128
	minInkPerRow   = 2
	minLineHeight  = 3
	lineStripPadPx = 2
)

// segmentLines finds horizontal text strips in a binarized image by row
// ink projection.
func segmentLines(gray *image.Gray) []image.Rectangle {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	inked := make([]bool, h)
	for y := 0; y < h; y++ {
		count := 0
		rowStart := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < w; x++ {
			if gray.Pix[rowStart+x] < inkThreshold {
				count++
				if count >= minInkPerRow {
					inked[y] = true
					break
				}
			}
		}
	}

	var strips []image.Rectangle
	start := -1
	for y := 0; y <= h; y++ {
		switch {
		case y < h && inked[y]:
			if start < 0 {
				start = y
			}
		case start >= 0:
			if y-start >= minLineHeight {
				top := max(0, start-lineStripPadPx)
				bottom := min(h, y+lineStripPadPx)
				strips = append(strips, image.Rect(
					bounds.Min.X, bounds.Min.Y+top,
					bounds.Min.X+w, bounds.Min.Y+bottom))
			}
			start = -1
		}
	}
	return strips
}
