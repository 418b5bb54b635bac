package imaging

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	apperrors "go-kyc-intake/internal/errors"
)

// ImageSample is an in-memory decoded image. Luminance and color planes are
// row-major with no stride padding. A sample is immutable once built and owned
// by the invocation that decoded it; concurrent readers are fine.
type ImageSample struct {
	Width  int
	Height int

	// Lum holds one luminance byte per pixel.
	Lum []uint8

	// Pix holds Channels interleaved bytes per pixel. Nil when Channels < 3.
	Pix      []uint8
	Channels int
}

// Decode interprets raw bytes as an image. A failure here is terminal for the
// submission; there is nothing to recover.
func Decode(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewDecodeError("unable to decode image data", err)
	}
	return img, nil
}

// DecodeSample decodes raw bytes into an ImageSample.
func DecodeSample(raw []byte) (*ImageSample, error) {
	img, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return SampleFromImage(img), nil
}

// SampleFromImage extracts the luminance and color planes of an already
// decoded image. A zero-dimension image yields a degenerate sample with empty
// planes; rejection policy is left to the caller.
func SampleFromImage(img image.Image) *ImageSample {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	s := &ImageSample{Width: w, Height: h}
	if w <= 0 || h <= 0 {
		return s
	}

	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	s.Lum = gray.Pix

	switch img.(type) {
	case *image.Gray, *image.Gray16:
		s.Channels = 1
	default:
		s.Channels = 3
		pix := make([]uint8, 0, w*h*3)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				pix = append(pix, uint8(r>>8), uint8(g>>8), uint8(b>>8))
			}
		}
		s.Pix = pix
	}
	return s
}
