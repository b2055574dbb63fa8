package pdf

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("doc.pdf"))
	assert.True(t, IsPDF("DOC.PDF"))
	assert.False(t, IsPDF("scan.png"))
	assert.False(t, IsPDF("archive.pdf.zip"))
}

func TestParsePageFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     int
		wantErr  bool
	}{
		{"page_1_Im0.png", 1, false},
		{"page_12_Im3.jpg", 12, false},
		{"page_2.png", 2, false},
		{"thumbnail.png", 0, true},
		{"page_x_Im0.png", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := parsePageFromFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapImageSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 4000))

	capped := capImageSize(img, 150)
	wantHeight := a4HeightInches * 150
	assert.Equal(t, int(wantHeight), capped.Bounds().Dy())

	// Disabled cap leaves the image alone.
	assert.Equal(t, 4000, capImageSize(img, 0).Bounds().Dy())

	// Small images pass through.
	small := image.NewRGBA(image.Rect(0, 0, 100, 100))
	assert.Equal(t, 100, capImageSize(small, 150).Bounds().Dy())
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 6))))
	require.NoError(t, f.Close())

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestLoadImage_Missing(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestPages_MissingFile(t *testing.T) {
	_, err := Pages(filepath.Join(t.TempDir(), "nope.pdf"), 150)
	assert.Error(t, err)
}

func TestCollectPageImages_KeepsLargestPerPage(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, w, h int) {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
		require.NoError(t, f.Close())
	}
	write("page_1_Im0.png", 8, 8)   // logo
	write("page_1_Im1.png", 64, 64) // full page scan
	write("page_2_Im0.png", 32, 32)
	write("notes.txt", 1, 1)

	byPage, err := collectPageImages(dir)
	require.NoError(t, err)
	require.Len(t, byPage, 2)
	assert.Equal(t, 64, byPage[1].Bounds().Dx())
	assert.Equal(t, 32, byPage[2].Bounds().Dx())
}
