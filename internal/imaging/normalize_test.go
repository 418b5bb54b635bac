package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestNormalizeSquare(t *testing.T) {
	img := createTestImage(400, 300, color.RGBA{90, 90, 90, 255})

	out, normalized, dims := NormalizeSquare(img, 128)
	if !normalized {
		t.Fatal("Expected normalization to happen")
	}
	if dims.X != 400 || dims.Y != 300 {
		t.Errorf("Expected original dims 400x300, got %dx%d", dims.X, dims.Y)
	}
	b := out.Bounds()
	if b.Dx() != 128 || b.Dy() != 128 {
		t.Errorf("Expected 128x128 output, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalizeSquare_PreservesUniformColor(t *testing.T) {
	img := createTestImage(200, 100, color.RGBA{200, 100, 50, 255})

	out, _, _ := NormalizeSquare(img, 64)
	r, g, b, _ := out.At(32, 32).RGBA()
	if delta(int(r>>8), 200) > 1 || delta(int(g>>8), 100) > 1 || delta(int(b>>8), 50) > 1 {
		t.Errorf("Expected uniform color to survive resampling, got %d/%d/%d",
			r>>8, g>>8, b>>8)
	}
}

func TestNormalizeSquare_DegenerateInput(t *testing.T) {
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	out, normalized, _ := NormalizeSquare(empty, 128)
	if normalized {
		t.Error("Expected no normalization for empty image")
	}
	if out != image.Image(empty) {
		t.Error("Expected original image back")
	}

	img := createTestImage(10, 10, color.RGBA{0, 0, 0, 255})
	_, normalized, _ = NormalizeSquare(img, 0)
	if normalized {
		t.Error("Expected no normalization for zero target size")
	}
}

func delta(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func TestAutoCropBorders(t *testing.T) {
	// White frame around a dark 20x10 content box.
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	for y := 10; y < 20; y++ {
		for x := 10; x < 30; x++ {
			img.Set(x, y, color.RGBA{20, 20, 20, 255})
		}
	}

	out, cropped := AutoCropBorders(img, 5)
	if !cropped {
		t.Fatal("Expected borders to be cropped")
	}
	b := out.Bounds()
	if b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("Expected 20x10 after crop, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestAutoCropBorders_NothingToTrim(t *testing.T) {
	// High-frequency content reaches every edge.
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if (x+y)%2 == 0 {
				img.Pix[y*20+x] = 255
			}
		}
	}

	out, cropped := AutoCropBorders(img, 5)
	if cropped {
		t.Error("Expected no cropping for edge-to-edge content")
	}
	if out != image.Image(img) {
		t.Error("Expected original image back")
	}
}

func TestAutoCropBorders_UniformImage(t *testing.T) {
	// Fully uniform: cropping would consume everything, so keep the original.
	img := createTestImage(30, 30, color.RGBA{128, 128, 128, 255})

	_, cropped := AutoCropBorders(img, 5)
	if cropped {
		t.Error("Expected no cropping for a uniform image")
	}
}

func TestAutoCropBorders_TinyImage(t *testing.T) {
	img := createTestImage(2, 2, color.RGBA{255, 255, 255, 255})
	_, cropped := AutoCropBorders(img, 5)
	if cropped {
		t.Error("Expected no cropping below minimum size")
	}
}
