package preprocess

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vanban-tech/vanban/internal/fields"
)

// TestApply_SizeProperty verifies the 2x upscale plus border relation holds
// for arbitrary region sizes.
func TestApply_SizeProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("output is 2*w+20 x 2*h+20", prop.ForAll(
		func(width, height int) bool {
			if width < 4 || height < 4 || width > 48 || height > 48 {
				return true
			}

			img := makeTestRegion(width, height)
			out, err := Apply(img, fields.ClassContent)
			if err != nil {
				return false
			}
			return out.Bounds().Dx() == width*2+20 && out.Bounds().Dy() == height*2+20
		},
		gen.IntRange(4, 48),
		gen.IntRange(4, 48),
	))

	properties.Property("output pixels are binary", prop.ForAll(
		func(width, height int) bool {
			if width < 4 || height < 4 || width > 32 || height > 32 {
				return true
			}

			img := makeTestRegion(width, height)
			out, err := Apply(img, fields.ClassDocType)
			if err != nil {
				return false
			}
			for _, v := range out.Pix {
				if v != 0 && v != 255 {
					return false
				}
			}
			return true
		},
		gen.IntRange(4, 32),
		gen.IntRange(4, 32),
	))

	properties.TestingRun(t)
}
