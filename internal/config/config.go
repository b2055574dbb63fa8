// Package config holds the application configuration: pipeline tuning,
// model locations, logging and the HTTP server. Values load from a YAML
// file, environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/vanban-tech/vanban/internal/pipeline"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`

	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
}

// PipelineConfig contains extraction pipeline settings.
type PipelineConfig struct {
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector" json:"detector"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine" json:"engine"`

	Workers             int     `mapstructure:"workers" yaml:"workers" json:"workers"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold" json:"confidence_threshold"`
	RenderDPI           int     `mapstructure:"render_dpi" yaml:"render_dpi" json:"render_dpi"`
	DebugDir            string  `mapstructure:"debug_dir" yaml:"debug_dir" json:"debug_dir"`
}

// DetectorConfig contains region detection settings.
type DetectorConfig struct {
	ModelPath   string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	LibraryPath string `mapstructure:"library_path" yaml:"library_path" json:"library_path"`
	InputSize   int    `mapstructure:"input_size" yaml:"input_size" json:"input_size"`
	NumThreads  int    `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
}

// EngineConfig contains text recognition settings.
type EngineConfig struct {
	ModelPath   string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	DictPath    string `mapstructure:"dict_path" yaml:"dict_path" json:"dict_path"`
	ImageHeight int    `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	MaxWidth    int    `mapstructure:"max_width" yaml:"max_width" json:"max_width"`
	NumThreads  int    `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Pipeline: PipelineConfig{
			Detector: DetectorConfig{
				ModelPath: "models/detect.onnx",
				InputSize: 640,
			},
			Engine: EngineConfig{
				ModelPath:   "models/recognize.onnx",
				DictPath:    "models/dict_vi.txt",
				ImageHeight: 48,
				MaxWidth:    1600,
			},
			Workers:             pipeline.DefaultWorkers(),
			ConfidenceThreshold: pipeline.DefaultConfidenceThreshold,
			RenderDPI:           pipeline.DefaultRenderDPI,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log_level %q (debug, info, warn, error)", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log_format %q (text, json)", c.LogFormat))
	}

	if c.Pipeline.Detector.ModelPath == "" {
		errs = append(errs, "pipeline.detector.model_path must not be empty")
	}
	if c.Pipeline.Detector.InputSize <= 0 {
		errs = append(errs, "pipeline.detector.input_size must be positive")
	}
	if c.Pipeline.Engine.ModelPath == "" {
		errs = append(errs, "pipeline.engine.model_path must not be empty")
	}
	if c.Pipeline.Engine.DictPath == "" {
		errs = append(errs, "pipeline.engine.dict_path must not be empty")
	}
	if c.Pipeline.Engine.ImageHeight <= 0 {
		errs = append(errs, "pipeline.engine.image_height must be positive")
	}
	if c.Pipeline.Workers < 1 {
		errs = append(errs, "pipeline.workers must be at least 1")
	}
	if c.Pipeline.ConfidenceThreshold < 0 || c.Pipeline.ConfidenceThreshold > 1 {
		errs = append(errs, "pipeline.confidence_threshold must be in [0, 1]")
	}
	if c.Pipeline.RenderDPI < 0 {
		errs = append(errs, "pipeline.render_dpi must not be negative")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid server.port %d", c.Server.Port))
	}
	if c.Server.MaxUploadMB < 1 {
		errs = append(errs, "server.max_upload_mb must be at least 1")
	}
	if c.Server.TimeoutSec < 1 {
		errs = append(errs, "server.timeout_sec must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Address returns the server listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
