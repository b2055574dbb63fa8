package preprocess

import "image"

// clahe performs contrast-limited adaptive histogram equalization over a
// tiles x tiles grid. Tile histograms are clipped at clipLimit (relative
// to a uniform distribution) with the excess redistributed, and the final
// mapping interpolates bilinearly between neighboring tile lookup tables.
func clahe(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return dst
	}
	if tiles < 1 {
		tiles = 1
	}
	if tiles > width {
		tiles = width
	}
	if tiles > height {
		tiles = height
	}

	tileW := (width + tiles - 1) / tiles
	tileH := (height + tiles - 1) / tiles

	// Per-tile lookup tables.
	luts := make([][256]uint8, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			// tileW is a ceiling, so trailing tile origins can pass the
			// image edge; clamp them to keep tileLUT's slices in range.
			x0 := min(tx*tileW, width)
			y0 := min(ty*tileH, height)
			x1 := min(x0+tileW, width)
			y1 := min(y0+tileH, height)
			luts[ty*tiles+tx] = tileLUT(src, x0, y0, x1, y1, clipLimit)
		}
	}

	// Bilinear interpolation between the four surrounding tile LUTs.
	for y := 0; y < height; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(fy)
		if fy < 0 {
			ty0 = 0
			fy = 0
		}
		ty1 := ty0 + 1
		if ty1 >= tiles {
			ty1 = tiles - 1
		}
		wy := fy - float64(ty0)
		if ty0 >= tiles {
			ty0 = tiles - 1
			wy = 0
		}
		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(fx)
			if fx < 0 {
				tx0 = 0
				fx = 0
			}
			tx1 := tx0 + 1
			if tx1 >= tiles {
				tx1 = tiles - 1
			}
			wx := fx - float64(tx0)
			if tx0 >= tiles {
				tx0 = tiles - 1
				wx = 0
			}

			v := src.Pix[y*src.Stride+x]
			tl := float64(luts[ty0*tiles+tx0][v])
			tr := float64(luts[ty0*tiles+tx1][v])
			bl := float64(luts[ty1*tiles+tx0][v])
			br := float64(luts[ty1*tiles+tx1][v])
			top := tl + (tr-tl)*wx
			bot := bl + (br-bl)*wx
			dst.Pix[y*dst.Stride+x] = clampByte(top + (bot-top)*wy)
		}
	}
	return dst
}

// tileLUT builds the clipped-equalization lookup table for one tile.
func tileLUT(src *image.Gray, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	area := (x1 - x0) * (y1 - y0)
	var lut [256]uint8
	if area == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}
	for y := y0; y < y1; y++ {
		row := src.Pix[y*src.Stride+x0 : y*src.Stride+x1]
		for _, v := range row {
			hist[v]++
		}
	}

	// Clip and redistribute.
	limit := int(clipLimit * float64(area) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i, c := range hist {
		if c > limit {
			excess += c - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	rem := excess % 256
	for i := range hist {
		hist[i] += share
		if i < rem {
			hist[i]++
		}
	}

	// Cumulative mapping to the full range.
	scale := 255.0 / float64(area)
	cum := 0
	for i, c := range hist {
		cum += c
		lut[i] = clampByte(float64(cum) * scale)
	}
	return lut
}
