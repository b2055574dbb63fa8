package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanban-tech/vanban/internal/fields"
)

func makeTestRegion(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255)
			if (x/4+y/4)%2 == 0 {
				v = 40
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestApply_OutputDimensions(t *testing.T) {
	classes := []fields.Class{
		fields.ClassAuthority,
		fields.ClassDocType,
		fields.ClassContent,
		fields.ClassIssueDate,
		fields.ClassRefNumber,
	}
	for _, class := range classes {
		t.Run(class.String(), func(t *testing.T) {
			img := makeTestRegion(30, 20)
			out, err := Apply(img, class)
			require.NoError(t, err)
			assert.Equal(t, 30*2+20, out.Bounds().Dx())
			assert.Equal(t, 20*2+20, out.Bounds().Dy())
		})
	}
}

func TestApply_OutputDimensions_DenoisedClasses(t *testing.T) {
	// Denoising classes use small inputs to keep the test fast.
	classes := []fields.Class{
		fields.ClassSignature,
		fields.ClassPosition,
		fields.ClassUrgency,
		fields.ClassRecipients,
	}
	for _, class := range classes {
		t.Run(class.String(), func(t *testing.T) {
			img := makeTestRegion(12, 8)
			out, err := Apply(img, class)
			require.NoError(t, err)
			assert.Equal(t, 12*2+20, out.Bounds().Dx())
			assert.Equal(t, 8*2+20, out.Bounds().Dy())
		})
	}
}

func TestApply_OutputIsBinary(t *testing.T) {
	img := makeTestRegion(24, 16)
	out, err := Apply(img, fields.ClassContent)
	require.NoError(t, err)
	for _, v := range out.Pix {
		assert.True(t, v == 0 || v == 255, "non-binary pixel value %d", v)
	}
}

func TestApply_BorderIsWhite(t *testing.T) {
	img := makeTestRegion(24, 16)
	out, err := Apply(img, fields.ClassDocType)
	require.NoError(t, err)

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	for x := 0; x < w; x++ {
		assert.Equal(t, uint8(255), out.GrayAt(x, 0).Y)
		assert.Equal(t, uint8(255), out.GrayAt(x, h-1).Y)
	}
	for y := 0; y < h; y++ {
		assert.Equal(t, uint8(255), out.GrayAt(0, y).Y)
		assert.Equal(t, uint8(255), out.GrayAt(w-1, y).Y)
	}
}

func TestApply_UnknownClassUsesDefault(t *testing.T) {
	img := makeTestRegion(24, 16)
	out, err := Apply(img, fields.Class(99))
	require.NoError(t, err)
	assert.Equal(t, 24*2+20, out.Bounds().Dx())
}

func TestApply_SmallRegion(t *testing.T) {
	// Small crops upscale to widths that do not divide evenly into the
	// equalization grid.
	img := makeTestRegion(17, 10)
	out, err := Apply(img, fields.ClassContent)
	require.NoError(t, err)
	assert.Equal(t, 17*2+20, out.Bounds().Dx())
	assert.Equal(t, 10*2+20, out.Bounds().Dy())
}

func TestApply_NilImage(t *testing.T) {
	_, err := Apply(nil, fields.ClassContent)
	assert.Error(t, err)
}

func TestApply_EmptyRegion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	_, err := Apply(img, fields.ClassContent)
	assert.Error(t, err)
}

func TestApply_Deterministic(t *testing.T) {
	img := makeTestRegion(20, 14)
	a, err := Apply(img, fields.ClassIssueDate)
	require.NoError(t, err)
	b, err := Apply(img, fields.ClassIssueDate)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
}
