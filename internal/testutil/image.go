// Package testutil provides synthetic document images for tests: pages
// with text drawn at known regions, so detection and recognition stages
// can be exercised without real scans.
package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vanban-tech/vanban/internal/utils"
)

// TextRegion places one text snippet on a synthetic page.
type TextRegion struct {
	Text string
	Box  utils.Box
}

// PageConfig describes a synthetic document page.
type PageConfig struct {
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
	Regions    []TextRegion
}

// DefaultPageConfig returns an A4-ish page at screen resolution.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Width:      794,
		Height:     1123,
		Background: color.White,
		Foreground: color.Black,
	}
}

// GeneratePage renders a synthetic page with each region's text drawn at
// the top-left of its box.
func GeneratePage(config PageConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, config.Width, config.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()

	for _, region := range config.Regions {
		drawer.Dot = fixed.P(int(region.Box.MinX)+2, int(region.Box.MinY)+ascent+2)
		drawer.DrawString(region.Text)
	}
	return img
}

// GenerateTextImage renders a single centered text line, for region-level
// tests that do not need a full page.
func GenerateTextImage(text string, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{color.Black},
		Face: face,
	}
	drawer.Dot = fixed.P((width-textWidth)/2, (height+textHeight)/2)
	drawer.DrawString(text)
	return img
}

// SavePNG writes an image to path, creating parent directories.
func SavePNG(t *testing.T, img image.Image, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))

	file, err := os.Create(path)
	require.NoError(t, err, "create %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	require.NoError(t, png.Encode(file, img), "encode %s", path)
}

// WriteTempPNG renders a page into a temp file and returns its path. The
// file is removed with the test's temp dir.
func WriteTempPNG(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), fmt.Sprintf("page-%dx%d.png", img.Bounds().Dx(), img.Bounds().Dy()))
	SavePNG(t, img, path)
	return path
}
