// Package preprocess prepares cropped document regions for OCR. Every
// region is grayscaled, upscaled 2x and binarized; the intermediate
// filtering depends on the region class, since a red urgency stamp needs a
// different treatment than a dense paragraph of body text.
package preprocess

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/utils"
)

const (
	// borderPx is the white margin added around the binarized region.
	borderPx = 10

	// upscaleFactor enlarges regions before filtering so diacritics
	// survive binarization.
	upscaleFactor = 2
)

type step func(*image.Gray) *image.Gray

// recipe is an ordered filter chain applied between grayscale upscale and
// the white border.
type recipe []step

func denoiseStep() step {
	return func(g *image.Gray) *image.Gray { return denoiseNonLocalMeans(g, 10, 7, 21) }
}

func claheStep(clip float64, tiles int) step {
	return func(g *image.Gray) *image.Gray { return clahe(g, clip, tiles) }
}

func blurStep() step {
	return func(g *image.Gray) *image.Gray { return gaussianBlur3(g) }
}

func sharpenStep() step {
	return func(g *image.Gray) *image.Gray { return sharpen(g) }
}

func otsuStep() step {
	return func(g *image.Gray) *image.Gray { return otsuThreshold(g) }
}

func adaptiveStep() step {
	return func(g *image.Gray) *image.Gray { return adaptiveGaussianThreshold(g, 11, 2) }
}

// defaultRecipe handles unknown classes and classes without special needs.
var defaultRecipe = recipe{blurStep(), claheStep(2.0, 8), otsuStep()}

// recipes maps each region class to its filter chain. Signature, position
// and recipient blocks carry faint handwriting or small print and get
// denoising plus adaptive thresholding; stamped or printed short fields
// binarize globally after sharpening.
var recipes = map[fields.Class]recipe{
	fields.ClassAuthority:  {blurStep(), claheStep(3.0, 8), sharpenStep(), otsuStep()},
	fields.ClassSignature:  {denoiseStep(), claheStep(3.0, 8), adaptiveStep()},
	fields.ClassPosition:   {denoiseStep(), claheStep(3.0, 8), adaptiveStep()},
	fields.ClassUrgency:    {denoiseStep(), claheStep(4.0, 4), adaptiveStep()},
	fields.ClassDocType:    {blurStep(), claheStep(2.5, 8), otsuStep()},
	fields.ClassContent:    {blurStep(), claheStep(2.0, 16), otsuStep()},
	fields.ClassIssueDate:  {blurStep(), claheStep(2.0, 8), sharpenStep(), otsuStep()},
	fields.ClassRecipients: {denoiseStep(), claheStep(3.0, 8), adaptiveStep()},
	fields.ClassRefNumber:  {blurStep(), claheStep(2.0, 8), sharpenStep(), otsuStep()},
}

// Apply runs the class-specific preprocessing chain on a region crop and
// returns the binarized image with a white border. The output dimensions
// are 2*w+20 x 2*h+20 for a w x h input.
func Apply(img image.Image, class fields.Class) (*image.Gray, error) {
	if img == nil {
		return nil, &utils.ImageProcessingError{Operation: "preprocess", Err: errors.New("input image is nil")}
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, &utils.ImageProcessingError{Operation: "preprocess", Err: errors.New("empty region")}
	}

	gray := utils.ToGray(img)
	up := imaging.Resize(gray, bounds.Dx()*upscaleFactor, bounds.Dy()*upscaleFactor, imaging.CatmullRom)
	out := utils.ToGray(up)

	chain, ok := recipes[class]
	if !ok {
		chain = defaultRecipe
	}
	for _, s := range chain {
		out = s(out)
	}
	return addBorder(out, borderPx, 255), nil
}
