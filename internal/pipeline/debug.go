package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/vanban-tech/vanban/internal/detector"
)

// dumpPage saves the original page image when a debug directory is set.
func (p *Pipeline) dumpPage(img image.Image, pageIndex int) {
	if p.config.DebugDir == "" {
		return
	}
	name := fmt.Sprintf("page_%d_original.png", pageIndex)
	p.saveDebugImage(img, "original", name)
}

// dumpRegion saves a region crop, qualified by page, class and detection
// confidence, under the original or processed subdirectory.
func (p *Pipeline) dumpRegion(img image.Image, pageIndex int, det detector.Detection, kind string) {
	if p.config.DebugDir == "" {
		return
	}
	name := fmt.Sprintf("page_%d_%s_%.2f_%s.png", pageIndex, det.Class.Key(), det.Confidence, kind)
	p.saveDebugImage(img, kind, name)
}

func (p *Pipeline) saveDebugImage(img image.Image, subdir, name string) {
	dir := filepath.Join(p.config.DebugDir, subdir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		p.logger.Warn("create debug directory failed", "dir", dir, "error", err)
		return
	}
	path := filepath.Join(dir, name)
	if err := imaging.Save(imaging.Clone(img), path); err != nil {
		p.logger.Warn("save debug image failed", "path", path, "error", err)
	}
}
