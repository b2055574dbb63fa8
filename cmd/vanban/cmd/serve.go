package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vanban-tech/vanban/internal/pipeline"
	"github.com/vanban-tech/vanban/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP server",
	Long: `Run an HTTP server exposing document extraction:

  POST /extract         multipart "document" (PDF or image) -> JSON fields
  POST /extract/region  multipart "image" + box + class -> text
  GET  /ws/extract      websocket with streamed progress
  GET  /classes         detectable region classes
  GET  /health          health check
  GET  /metrics         Prometheus metrics

Example:
  vanban serve --host 0.0.0.0 --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().String("cors", "", "CORS allowed origin")

	cobra.CheckErr(viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host")))
	cobra.CheckErr(viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port")))
	cobra.CheckErr(viper.BindPFlag("server.cors_origin", serveCmd.Flags().Lookup("cors")))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	factory := server.NewPipelineFactory(func(progress pipeline.ProgressCallback) (*pipeline.Pipeline, error) {
		return buildPipeline(cfg, progress)
	})

	srv, err := server.NewServer(server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		CORSOrigin:      cfg.Server.CORSOrigin,
		MaxUploadMB:     int64(cfg.Server.MaxUploadMB),
		TimeoutSec:      cfg.Server.TimeoutSec,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, factory, slog.Default())
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
