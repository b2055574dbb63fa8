package preprocess

import (
	"image"
	"math"
)

// reflectIndex mirrors an out-of-range index back into [0,n).
func reflectIndex(i, n int) int {
	if i < 0 {
		i = -i
	}
	if i >= n {
		i = 2*n - 2 - i
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return i
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// convolve3 applies a 3x3 kernel with mirrored borders.
func convolve3(src *image.Gray, kernel [9]float64) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			k := 0
			for dy := -1; dy <= 1; dy++ {
				sy := reflectIndex(y+dy, height)
				for dx := -1; dx <= 1; dx++ {
					sx := reflectIndex(x+dx, width)
					sum += kernel[k] * float64(src.GrayAt(sx, sy).Y)
					k++
				}
			}
			dst.Pix[y*dst.Stride+x] = clampByte(sum)
		}
	}
	return dst
}

// gaussianBlur3 applies a 3x3 Gaussian smoothing kernel.
func gaussianBlur3(src *image.Gray) *image.Gray {
	k := [9]float64{
		1.0 / 16, 2.0 / 16, 1.0 / 16,
		2.0 / 16, 4.0 / 16, 2.0 / 16,
		1.0 / 16, 2.0 / 16, 1.0 / 16,
	}
	return convolve3(src, k)
}

// sharpen applies the standard 3x3 sharpening kernel used to crisp up
// digits and short codes before binarization.
func sharpen(src *image.Gray) *image.Gray {
	k := [9]float64{
		-1, -1, -1,
		-1, 9, -1,
		-1, -1, -1,
	}
	return convolve3(src, k)
}

// otsuThreshold binarizes the image with the global Otsu threshold.
func otsuThreshold(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	total := width * height
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if total == 0 {
		return dst
	}

	var hist [256]int
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+width]
		for _, v := range row {
			hist[v]++
		}
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}

	var sumB, wB float64
	var bestVar float64
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			threshold = t
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := src.Pix[y*src.Stride+x]
			if int(v) > threshold {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// adaptiveGaussianThreshold binarizes each pixel against the Gaussian
// weighted mean of its block neighborhood minus the constant c.
func adaptiveGaussianThreshold(src *image.Gray, blockSize int, c float64) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return dst
	}
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}

	kernel := gaussianKernel1D(blockSize)
	r := blockSize / 2

	// Separable pass: horizontal then vertical weighted means.
	tmp := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for i := -r; i <= r; i++ {
				sx := reflectIndex(x+i, width)
				sum += kernel[i+r] * float64(src.GrayAt(sx, y).Y)
			}
			tmp[y*width+x] = sum
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var mean float64
			for i := -r; i <= r; i++ {
				sy := reflectIndex(y+i, height)
				mean += kernel[i+r] * tmp[sy*width+x]
			}
			if float64(src.GrayAt(x, y).Y) > mean-c {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// gaussianKernel1D builds a normalized 1D Gaussian kernel with the sigma
// convention sigma = 0.3*((n-1)*0.5 - 1) + 0.8.
func gaussianKernel1D(n int) []float64 {
	sigma := 0.3*(float64(n-1)*0.5-1) + 0.8
	r := n / 2
	kernel := make([]float64, n)
	var sum float64
	for i := -r; i <= r; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+r] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// denoiseNonLocalMeans removes speckle noise by averaging pixels with
// similar patch neighborhoods. h controls filter strength, template the
// patch size and search the search window size. Parameters follow the
// common (10, 7, 21) defaults for document scans.
func denoiseNonLocalMeans(src *image.Gray, h float64, template, search int) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return dst
	}
	tr := template / 2
	sr := search / 2
	h2 := h * h
	patchArea := float64(template * template)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var weightSum, valueSum float64
			for sy := y - sr; sy <= y+sr; sy++ {
				cy := reflectIndex(sy, height)
				for sx := x - sr; sx <= x+sr; sx++ {
					cx := reflectIndex(sx, width)
					var dist float64
					for ty := -tr; ty <= tr; ty++ {
						ay := reflectIndex(y+ty, height)
						by := reflectIndex(cy+ty, height)
						for tx := -tr; tx <= tr; tx++ {
							ax := reflectIndex(x+tx, width)
							bx := reflectIndex(cx+tx, width)
							d := float64(src.GrayAt(ax, ay).Y) - float64(src.GrayAt(bx, by).Y)
							dist += d * d
						}
					}
					w := math.Exp(-dist / (h2 * patchArea))
					weightSum += w
					valueSum += w * float64(src.GrayAt(cx, cy).Y)
				}
			}
			dst.Pix[y*dst.Stride+x] = clampByte(valueSum / weightSum)
		}
	}
	return dst
}

// addBorder surrounds the image with a uniform border of the given value.
func addBorder(src *image.Gray, px int, value uint8) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width+2*px, height+2*px))
	for i := range dst.Pix {
		dst.Pix[i] = value
	}
	for y := 0; y < height; y++ {
		copy(dst.Pix[(y+px)*dst.Stride+px:(y+px)*dst.Stride+px+width],
			src.Pix[y*src.Stride:y*src.Stride+width])
	}
	return dst
}
