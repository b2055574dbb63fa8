package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanban-tech/vanban/internal/pipeline"
)

var documentCmd = &cobra.Command{
	Use:   "document <file>",
	Short: "Extract fields from a PDF document or page image",
	Long: `Extract document fields from a scanned PDF or a single page image.
The result is printed as JSON: the merged fields plus every detected
region with its box, class, confidence and text.

Examples:
  vanban document scan.pdf
  vanban document scan.pdf --output result.json
  vanban document page.png --regions=false`,
	Args: cobra.ExactArgs(1),
	RunE: runDocument,
}

func init() {
	documentCmd.Flags().StringP("output", "o", "", "write the JSON result to a file instead of stdout")
	documentCmd.Flags().Bool("regions", true, "include per-region details in the output")
	documentCmd.Flags().Bool("quiet", false, "suppress progress output")
	documentCmd.Flags().Float64("confidence", 0, "override the detection confidence threshold")
	documentCmd.Flags().String("debug-dir", "", "dump page and region images into this directory")

	rootCmd.AddCommand(documentCmd)
}

func runDocument(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	if confidence, _ := cmd.Flags().GetFloat64("confidence"); cmd.Flags().Changed("confidence") {
		cfg.Pipeline.ConfidenceThreshold = confidence
	}
	if debugDir, _ := cmd.Flags().GetString("debug-dir"); debugDir != "" {
		cfg.Pipeline.DebugDir = debugDir
	}

	var progress pipeline.ProgressCallback = pipeline.NewConsoleProgress(cmd.ErrOrStderr())
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		progress = pipeline.NoOpProgress{}
	}

	p, err := buildPipeline(cfg, progress)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := p.ProcessDocument(ctx, args[0])
	if err != nil {
		return err
	}

	if withRegions, _ := cmd.Flags().GetBool("regions"); !withRegions {
		result.Regions = nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		return os.WriteFile(output, append(data, '\n'), 0o600)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
