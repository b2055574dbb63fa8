package pipeline

import (
	"errors"
	"log/slog"
	"runtime"

	"github.com/vanban-tech/vanban/internal/detector"
	"github.com/vanban-tech/vanban/internal/ocr"
)

// DefaultConfidenceThreshold keeps only detections strictly above this
// confidence.
const DefaultConfidenceThreshold = 0.5

// DefaultRenderDPI caps page image density during PDF extraction.
const DefaultRenderDPI = 150

// DefaultWorkers leaves one core free for the rest of the system.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// Config holds the assembled pipeline configuration.
type Config struct {
	Workers             int
	ConfidenceThreshold float64
	RenderDPI           int
	DebugDir            string
}

// Builder assembles a Pipeline using a fluent interface.
type Builder struct {
	config          Config
	detectorFactory detector.Factory
	engineFactory   ocr.EngineFactory
	progress        ProgressCallback
	logger          *slog.Logger
	err             error
}

// NewBuilder creates a builder with default configuration.
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			Workers:             DefaultWorkers(),
			ConfidenceThreshold: DefaultConfidenceThreshold,
			RenderDPI:           DefaultRenderDPI,
		},
		progress: NoOpProgress{},
		logger:   slog.Default(),
	}
}

// WithDetectorFactory sets the factory constructing per-worker detectors.
func (b *Builder) WithDetectorFactory(f detector.Factory) *Builder {
	b.detectorFactory = f
	return b
}

// WithDetectorModel configures ONNX detection with the given model file.
func (b *Builder) WithDetectorModel(config detector.Config) *Builder {
	b.detectorFactory = func() (detector.Detector, error) {
		return detector.NewONNX(config)
	}
	return b
}

// WithEngineFactory sets the factory constructing per-worker recognition
// engines.
func (b *Builder) WithEngineFactory(f ocr.EngineFactory) *Builder {
	b.engineFactory = f
	return b
}

// WithEngineModel configures ONNX recognition with the given model and
// dictionary.
func (b *Builder) WithEngineModel(config ocr.ONNXConfig) *Builder {
	b.engineFactory = func() (ocr.Engine, error) {
		return ocr.NewONNXEngine(config)
	}
	return b
}

// WithWorkers sets the worker count. Values below 1 fall back to the
// default.
func (b *Builder) WithWorkers(n int) *Builder {
	if n < 1 {
		n = DefaultWorkers()
	}
	b.config.Workers = n
	return b
}

// WithConfidenceThreshold sets the strict detection confidence cutoff.
func (b *Builder) WithConfidenceThreshold(t float64) *Builder {
	if t < 0 || t > 1 {
		b.err = errors.New("confidence threshold must be in [0, 1]")
		return b
	}
	b.config.ConfidenceThreshold = t
	return b
}

// WithRenderDPI sets the page image density cap used for PDF extraction.
func (b *Builder) WithRenderDPI(dpi int) *Builder {
	b.config.RenderDPI = dpi
	return b
}

// WithDebugDir enables debug image dumps into the given directory.
func (b *Builder) WithDebugDir(dir string) *Builder {
	b.config.DebugDir = dir
	return b
}

// WithProgress sets the progress callback.
func (b *Builder) WithProgress(cb ProgressCallback) *Builder {
	if cb == nil {
		cb = NoOpProgress{}
	}
	b.progress = cb
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build validates the configuration and returns the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.detectorFactory == nil {
		return nil, errors.New("detector factory is required")
	}
	if b.engineFactory == nil {
		return nil, errors.New("engine factory is required")
	}
	return &Pipeline{
		config:          b.config,
		detectorFactory: b.detectorFactory,
		engineFactory:   b.engineFactory,
		progress:        b.progress,
		logger:          b.logger,
	}, nil
}
