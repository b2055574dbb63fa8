package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files.
	ConfigFileName = "vanban"

	// EnvPrefix is the prefix for environment variables, e.g.
	// VANBAN_PIPELINE_WORKERS.
	EnvPrefix = "VANBAN"
)

// Loader loads configuration from files, environment variables and
// defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader backed by the global viper instance so
// command-line flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load reads configuration from the search paths and the environment. A
// missing configuration file is not an error.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return l.unmarshal()
}

// LoadFile reads configuration from a specific file path.
func (l *Loader) LoadFile(path string) (*Config, error) {
	if path == "" {
		return l.Load()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	l.v.SetConfigFile(path)
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	return l.unmarshal()
}

// ConfigFileUsed returns the path of the configuration file in use.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper exposes the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) unmarshal() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "vanban"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "vanban"))
	}

	l.v.AddConfigPath("/etc/vanban")
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("log_format", defaults.LogFormat)

	l.v.SetDefault("pipeline.detector.model_path", defaults.Pipeline.Detector.ModelPath)
	l.v.SetDefault("pipeline.detector.library_path", defaults.Pipeline.Detector.LibraryPath)
	l.v.SetDefault("pipeline.detector.input_size", defaults.Pipeline.Detector.InputSize)
	l.v.SetDefault("pipeline.detector.num_threads", defaults.Pipeline.Detector.NumThreads)
	l.v.SetDefault("pipeline.engine.model_path", defaults.Pipeline.Engine.ModelPath)
	l.v.SetDefault("pipeline.engine.dict_path", defaults.Pipeline.Engine.DictPath)
	l.v.SetDefault("pipeline.engine.image_height", defaults.Pipeline.Engine.ImageHeight)
	l.v.SetDefault("pipeline.engine.max_width", defaults.Pipeline.Engine.MaxWidth)
	l.v.SetDefault("pipeline.engine.num_threads", defaults.Pipeline.Engine.NumThreads)
	l.v.SetDefault("pipeline.workers", defaults.Pipeline.Workers)
	l.v.SetDefault("pipeline.confidence_threshold", defaults.Pipeline.ConfidenceThreshold)
	l.v.SetDefault("pipeline.render_dpi", defaults.Pipeline.RenderDPI)
	l.v.SetDefault("pipeline.debug_dir", defaults.Pipeline.DebugDir)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
}

// WriteDefaultFile writes the default configuration as YAML to path. It
// refuses to overwrite an existing file.
func WriteDefaultFile(path string) error {
	if path == "" {
		path = ConfigFileName + ".yaml"
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	defaults := DefaultConfig()
	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
