package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/pdf"
	"github.com/vanban-tech/vanban/internal/pipeline"
	"github.com/vanban-tech/vanban/internal/utils"
)

var regionCmd = &cobra.Command{
	Use:   "region <image>",
	Short: "Extract text from one manually selected region",
	Long: `Extract text from a single region of a page image: the box is
cropped with class-specific margins, preprocessed and read.

The class id selects the field type:
  0 CQBH  1 Chu_Ky  2 Chuc_Vu  3 Do_Khan  4 Loai_VB
  5 ND_Chinh  6 Ngay_BH  7 Noi_Nhan  8 So_Ki_Hieu

Example:
  vanban region page.png --box 120,80,560,140 --class 8`,
	Args: cobra.ExactArgs(1),
	RunE: runRegion,
}

func init() {
	regionCmd.Flags().String("box", "", "region box as x1,y1,x2,y2 (required)")
	regionCmd.Flags().Int("class", -1, "region class id (required)")
	_ = regionCmd.MarkFlagRequired("box")
	_ = regionCmd.MarkFlagRequired("class")

	rootCmd.AddCommand(regionCmd)
}

func runRegion(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	boxFlag, _ := cmd.Flags().GetString("box")
	box, err := parseBox(boxFlag)
	if err != nil {
		return err
	}

	classID, _ := cmd.Flags().GetInt("class")
	class := fields.Class(classID)
	if !class.Valid() {
		return fmt.Errorf("unknown class id %d", classID)
	}

	img, err := pdf.LoadImage(args[0])
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg, pipeline.NoOpProgress{})
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	text, err := p.ProcessRegion(img, box, class)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

// parseBox parses "x1,y1,x2,y2".
func parseBox(s string) (utils.Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return utils.Box{}, fmt.Errorf("box must be x1,y1,x2,y2, got %q", s)
	}
	coords := make([]float64, 4)
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return utils.Box{}, fmt.Errorf("invalid box coordinate %q", part)
		}
		coords[i] = value
	}
	return utils.NewBox(coords[0], coords[1], coords[2], coords[3]), nil
}
