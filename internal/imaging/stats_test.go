package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func createTestImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestComputeStats_UniformImage(t *testing.T) {
	img := createTestImage(50, 50, color.RGBA{128, 128, 128, 255})
	stats := ComputeStats(SampleFromImage(img))

	if stats.Width != 50 || stats.Height != 50 {
		t.Errorf("Expected 50x50, got %dx%d", stats.Width, stats.Height)
	}
	if math.Abs(stats.Brightness-128) > 1 {
		t.Errorf("Expected brightness ~128, got %f", stats.Brightness)
	}
	if stats.Contrast > 0.01 {
		t.Errorf("Expected zero contrast for uniform image, got %f", stats.Contrast)
	}
	if stats.Blur > 0.01 {
		t.Errorf("Expected zero Laplacian variance for uniform image, got %f", stats.Blur)
	}
	if stats.BackgroundStdDev > 0.01 {
		t.Errorf("Expected zero border deviation for uniform image, got %f", stats.BackgroundStdDev)
	}
}

func TestComputeStats_ChannelMeans(t *testing.T) {
	img := createTestImage(40, 40, color.RGBA{200, 100, 50, 255})
	stats := ComputeStats(SampleFromImage(img))

	if math.Abs(stats.RMean-200) > 0.5 {
		t.Errorf("Expected rMean ~200, got %f", stats.RMean)
	}
	if math.Abs(stats.GMean-100) > 0.5 {
		t.Errorf("Expected gMean ~100, got %f", stats.GMean)
	}
	if math.Abs(stats.BMean-50) > 0.5 {
		t.Errorf("Expected bMean ~50, got %f", stats.BMean)
	}
	// Max pairwise delta is |200-50|.
	if math.Abs(stats.RGBBalanceDelta-150) > 0.5 {
		t.Errorf("Expected balance delta ~150, got %f", stats.RGBBalanceDelta)
	}
}

func TestComputeStats_GrayscaleCollapsesMeans(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 30, 30))
	for i := range gray.Pix {
		gray.Pix[i] = 77
	}
	stats := ComputeStats(SampleFromImage(gray))

	if stats.RGBBalanceDelta != 0 {
		t.Errorf("Expected zero balance delta for grayscale, got %f", stats.RGBBalanceDelta)
	}
	if stats.RMean != stats.Brightness || stats.GMean != stats.Brightness || stats.BMean != stats.Brightness {
		t.Errorf("Expected channel means to collapse to brightness %f, got %f/%f/%f",
			stats.Brightness, stats.RMean, stats.GMean, stats.BMean)
	}
}

func TestComputeStats_BlurOrdering(t *testing.T) {
	// A checkerboard has strong high-frequency content; a uniform field has
	// none. The Laplacian variance must order them accordingly.
	sharp := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if (x+y)%2 == 0 {
				sharp.Pix[y*32+x] = 255
			}
		}
	}
	flat := image.NewGray(image.Rect(0, 0, 32, 32))

	sharpStats := ComputeStats(SampleFromImage(sharp))
	flatStats := ComputeStats(SampleFromImage(flat))

	if sharpStats.Blur <= flatStats.Blur {
		t.Errorf("Expected checkerboard blur %f > flat blur %f", sharpStats.Blur, flatStats.Blur)
	}
	if sharpStats.Contrast <= flatStats.Contrast {
		t.Errorf("Expected checkerboard contrast %f > flat contrast %f", sharpStats.Contrast, flatStats.Contrast)
	}
}

func TestComputeStats_NonNegative(t *testing.T) {
	img := createTestImage(17, 23, color.RGBA{13, 240, 99, 255})
	stats := ComputeStats(SampleFromImage(img))

	for name, v := range map[string]float64{
		"brightness":         stats.Brightness,
		"contrast":           stats.Contrast,
		"blur":               stats.Blur,
		"background_std_dev": stats.BackgroundStdDev,
		"rgb_balance_delta":  stats.RGBBalanceDelta,
	} {
		if v < 0 || math.IsNaN(v) {
			t.Errorf("Expected non-negative finite %s, got %f", name, v)
		}
	}
}

func TestComputeStats_Degenerate(t *testing.T) {
	stats := ComputeStats(SampleFromImage(image.NewRGBA(image.Rect(0, 0, 0, 0))))

	if stats.Brightness != 0 || stats.Contrast != 0 || stats.Blur != 0 || stats.BackgroundStdDev != 0 {
		t.Errorf("Expected zero-filled stats for empty image, got %+v", stats)
	}
}

func TestComputeStats_TinyImage(t *testing.T) {
	// 2x2 has no interior pixels; the Laplacian must not panic and reports 0.
	img := createTestImage(2, 2, color.RGBA{10, 10, 10, 255})
	stats := ComputeStats(SampleFromImage(img))

	if stats.Blur != 0 {
		t.Errorf("Expected zero blur for 2x2 image, got %f", stats.Blur)
	}
}

func TestComputeImageStats_DecodesPNG(t *testing.T) {
	img := createTestImage(20, 20, color.RGBA{60, 60, 60, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}

	stats, err := ComputeImageStats(buf.Bytes())
	if err != nil {
		t.Fatalf("Expected successful decode, got %v", err)
	}
	if math.Abs(stats.Brightness-60) > 1 {
		t.Errorf("Expected brightness ~60, got %f", stats.Brightness)
	}
}

func TestComputeImageStats_InvalidData(t *testing.T) {
	_, err := ComputeImageStats([]byte("not an image"))
	if err == nil {
		t.Error("Expected error for undecodable payload")
	}
}
