// Package onnx holds the small tensor plumbing shared by ONNX model
// runners.
package onnx

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Tensor is a float32 tensor prepared for ONNX input, row-major, NCHW for
// images.
type Tensor struct {
	Data  []float32
	Shape []int64 // [N, C, H, W]
}

// NewImageTensor builds a single-image tensor with shape [1, C, H, W].
// data must be length C*H*W in NCHW order.
func NewImageTensor(data []float32, c, h, w int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	expected := c * h * w
	if len(data) != expected {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	return Tensor{Data: data, Shape: []int64{1, int64(c), int64(h), int64(w)}}, nil
}

// ValidateNCHW ensures a shape is [N, C, H, W] with positive dimensions.
func ValidateNCHW(shape []int64) error {
	if len(shape) != 4 {
		return fmt.Errorf("shape rank %d != 4", len(shape))
	}
	for i, v := range shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
	}
	return nil
}

// ImageToNCHW converts an image to a normalized NCHW float tensor of the
// given size, resizing with Lanczos. Pixel values are scaled to [0, 1].
func ImageToNCHW(img image.Image, width, height int) (Tensor, error) {
	if img == nil {
		return Tensor{}, errors.New("nil image")
	}
	if width <= 0 || height <= 0 {
		return Tensor{}, fmt.Errorf("invalid tensor size %dx%d", width, height)
	}
	resized := imaging.Resize(img, width, height, imaging.Lanczos)
	bounds := resized.Bounds()

	data := make([]float32, 3*width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*width + x
			data[idx] = float32(r>>8) / 255.0
			data[width*height+idx] = float32(g>>8) / 255.0
			data[2*width*height+idx] = float32(b>>8) / 255.0
		}
	}
	return NewImageTensor(data, 3, height, width)
}
