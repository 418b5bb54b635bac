package imaging

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// NormalizeSquare center-crops img to the largest square fitting the shorter
// dimension and resizes it to targetSize x targetSize. It reports whether
// normalization happened and always returns the original dimensions. Images
// with a zero dimension are returned unchanged.
func NormalizeSquare(img image.Image, targetSize int) (image.Image, bool, image.Point) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	originalDims := image.Point{X: w, Y: h}
	if w <= 0 || h <= 0 || targetSize <= 0 {
		return img, false, originalDims
	}

	side := w
	if h < side {
		side = h
	}
	x0 := bounds.Min.X + (w-side)/2
	y0 := bounds.Min.Y + (h-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, xdraw.Src, nil)
	return dst, true, originalDims
}

// AutoCropBorders trims uniform-color margins from img. A row or column is
// considered uniform when its luminance spread stays within tolerance. This is
// best effort: when nothing can be trimmed, or trimming would consume the
// whole image, the original is returned with wasCropped=false.
func AutoCropBorders(img image.Image, tolerance float64) (image.Image, bool) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 || tolerance < 0 {
		return img, false
	}

	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	top, bottom := 0, h-1
	left, right := 0, w-1

	for top < bottom && rowUniform(gray.Pix, w, top, tolerance) {
		top++
	}
	for bottom > top && rowUniform(gray.Pix, w, bottom, tolerance) {
		bottom--
	}
	for left < right && colUniform(gray.Pix, w, h, left, top, bottom, tolerance) {
		left++
	}
	for right > left && colUniform(gray.Pix, w, h, right, top, bottom, tolerance) {
		right--
	}

	if top == 0 && left == 0 && bottom == h-1 && right == w-1 {
		return img, false
	}
	if right-left < 2 || bottom-top < 2 {
		// Near-uniform image; cropping it away would leave nothing useful.
		return img, false
	}

	crop := image.Rect(bounds.Min.X+left, bounds.Min.Y+top, bounds.Min.X+right+1, bounds.Min.Y+bottom+1)
	dst := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(dst, dst.Bounds(), img, crop.Min, draw.Src)
	return dst, true
}

func rowUniform(pix []uint8, width, y int, tolerance float64) bool {
	lo, hi := pix[y*width], pix[y*width]
	for x := 1; x < width; x++ {
		v := pix[y*width+x]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return float64(hi-lo) <= tolerance
}

func colUniform(pix []uint8, width, height, x, top, bottom int, tolerance float64) bool {
	if top < 0 {
		top = 0
	}
	if bottom > height-1 {
		bottom = height - 1
	}
	lo, hi := pix[top*width+x], pix[top*width+x]
	for y := top + 1; y <= bottom; y++ {
		v := pix[y*width+x]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return float64(hi-lo) <= tolerance
}
