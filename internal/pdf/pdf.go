// Package pdf turns PDF documents into per-page images for the
// extraction pipeline.
package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// a4HeightInches caps page images at A4 height for the configured density.
const a4HeightInches = 11.69

// Page is one document page image. Index is zero-based and follows the
// PDF page order.
type Page struct {
	Index int
	Image image.Image
}

// IsPDF reports whether the path looks like a PDF document.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// PageCount returns the number of pages in the document.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}

// Pages extracts the page images of a PDF in page order. Scanned
// administrative documents embed one full-page scan per page; pages
// without an extractable image are skipped. dpi caps the page image
// height at A4 size for that density so oversized scans do not blow up
// downstream processing; dpi <= 0 disables the cap.
func Pages(path string, dpi int) ([]Page, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "vanban-pages-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := api.ExtractImagesFile(path, tempDir, nil, nil); err != nil {
		return nil, fmt.Errorf("extract page images: %w", err)
	}

	byPage, err := collectPageImages(tempDir)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(byPage))
	for pageNum, img := range byPage {
		pages = append(pages, Page{Index: pageNum - 1, Image: capImageSize(img, dpi)})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	return pages, nil
}

// LoadImage reads a single page image file (PNG or JPEG).
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // reading a user-provided path is expected
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}

// collectPageImages walks the extraction directory and keeps the largest
// image per page, since a scanned page may also embed small logo images.
func collectPageImages(dir string) (map[int]image.Image, error) {
	result := make(map[int]image.Image)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		pageNum, err := parsePageFromFilename(info.Name())
		if err != nil {
			return nil
		}
		img, err := LoadImage(path)
		if err != nil || img == nil {
			return nil
		}
		if prev, ok := result[pageNum]; ok && area(prev) >= area(img) {
			return nil
		}
		result[pageNum] = img
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func area(img image.Image) int {
	return img.Bounds().Dx() * img.Bounds().Dy()
}

func capImageSize(img image.Image, dpi int) image.Image {
	if dpi <= 0 {
		return img
	}
	maxHeight := int(a4HeightInches * float64(dpi))
	if img.Bounds().Dy() <= maxHeight {
		return img
	}
	return imaging.Resize(img, 0, maxHeight, imaging.Lanczos)
}

// parsePageFromFilename extracts the page number from a pdfcpu extracted
// filename such as page_1_Im0.png.
func parsePageFromFilename(filename string) (int, error) {
	if !strings.HasPrefix(filename, "page_") {
		return 0, errors.New("not a page file")
	}
	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}
	// pdfcpu may emit page_2.png with no image suffix.
	num := strings.TrimSuffix(parts[1], filepath.Ext(parts[1]))
	pageNum, err := strconv.Atoi(num)
	if err != nil {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}
