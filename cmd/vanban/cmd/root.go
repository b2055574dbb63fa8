// Package cmd implements the vanban command-line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vanban-tech/vanban/internal/config"
)

var (
	cfgFile      string
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vanban",
	Short: "Trích xuất thông tin văn bản hành chính",
	Long: `vanban extracts structured metadata from scanned Vietnamese
administrative documents: issuing authority, reference number, document
type, issue date, signer, urgency and more.

Region detection uses a YOLO ONNX model; each detected region is
preprocessed per field class and read by an ONNX recognition model.

Examples:
  vanban document scan.pdf
  vanban region page.png --box 120,80,560,140 --class 8
  vanban serve --port 8080
  vanban config init`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $XDG_CONFIG_HOME/vanban, /etc/vanban)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("model", "", "region detection model path")
	rootCmd.PersistentFlags().Int("workers", 0, "page worker count (0 = one per core, minus one)")

	cobra.CheckErr(viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format")))
	cobra.CheckErr(viper.BindPFlag("pipeline.detector.model_path", rootCmd.PersistentFlags().Lookup("model")))
	cobra.CheckErr(viper.BindPFlag("pipeline.workers", rootCmd.PersistentFlags().Lookup("workers")))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		globalConfig = cfg
		setupLogging(cfg)
		return nil
	}
}

func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if cfgFile != "" {
		return loader.LoadFile(cfgFile)
	}
	return loader.Load()
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, options)
	} else {
		handler = slog.NewTextHandler(os.Stderr, options)
	}
	slog.SetDefault(slog.New(handler))
}

func getConfig() (*config.Config, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return globalConfig, nil
}
