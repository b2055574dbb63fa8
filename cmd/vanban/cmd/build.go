package cmd

import (
	"log/slog"

	"github.com/vanban-tech/vanban/internal/config"
	"github.com/vanban-tech/vanban/internal/detector"
	"github.com/vanban-tech/vanban/internal/ocr"
	"github.com/vanban-tech/vanban/internal/pipeline"
)

// buildPipeline assembles a pipeline from the loaded configuration.
func buildPipeline(cfg *config.Config, progress pipeline.ProgressCallback) (*pipeline.Pipeline, error) {
	detectorConfig := detector.DefaultConfig()
	detectorConfig.ModelPath = cfg.Pipeline.Detector.ModelPath
	detectorConfig.LibraryPath = cfg.Pipeline.Detector.LibraryPath
	if cfg.Pipeline.Detector.InputSize > 0 {
		detectorConfig.InputSize = cfg.Pipeline.Detector.InputSize
	}
	detectorConfig.NumThreads = cfg.Pipeline.Detector.NumThreads

	engineConfig := ocr.DefaultONNXConfig()
	engineConfig.ModelPath = cfg.Pipeline.Engine.ModelPath
	engineConfig.DictPath = cfg.Pipeline.Engine.DictPath
	engineConfig.LibraryPath = cfg.Pipeline.Detector.LibraryPath
	if cfg.Pipeline.Engine.ImageHeight > 0 {
		engineConfig.ImageHeight = cfg.Pipeline.Engine.ImageHeight
	}
	if cfg.Pipeline.Engine.MaxWidth > 0 {
		engineConfig.MaxWidth = cfg.Pipeline.Engine.MaxWidth
	}
	engineConfig.NumThreads = cfg.Pipeline.Engine.NumThreads

	return pipeline.NewBuilder().
		WithDetectorModel(detectorConfig).
		WithEngineModel(engineConfig).
		WithWorkers(cfg.Pipeline.Workers).
		WithConfidenceThreshold(cfg.Pipeline.ConfidenceThreshold).
		WithRenderDPI(cfg.Pipeline.RenderDPI).
		WithDebugDir(cfg.Pipeline.DebugDir).
		WithProgress(progress).
		WithLogger(slog.Default()).
		Build()
}
