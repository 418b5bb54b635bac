package imaging

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// ImageStats holds the scalar descriptors computed from a decoded image.
// Luminance and color samples are 0-255; every moment is computed in floating
// point and no rounding is applied here.
type ImageStats struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Brightness is the arithmetic mean of the luminance plane.
	Brightness float64 `json:"brightness"`

	// Contrast is the population standard deviation of the luminance plane.
	Contrast float64 `json:"contrast"`

	// Blur is the population variance of the discrete Laplacian response over
	// the interior pixels. Higher means sharper; near zero means flat or out
	// of focus. This is a monotone proxy, not a calibrated unit, so consumers
	// compare against fixed empirical thresholds.
	Blur float64 `json:"blur"`

	// BackgroundStdDev is the standard deviation of the luminance sampled
	// along the 1-pixel border ring, a proxy for backdrop uniformity.
	BackgroundStdDev float64 `json:"background_std_dev"`

	RMean float64 `json:"r_mean"`
	GMean float64 `json:"g_mean"`
	BMean float64 `json:"b_mean"`

	// RGBBalanceDelta is the max pairwise absolute difference among the three
	// channel means. 0 means neutral gray balance.
	RGBBalanceDelta float64 `json:"rgb_balance_delta"`
}

// ComputeImageStats decodes raw image bytes and computes its descriptors.
// The only failure mode is an undecodable payload.
func ComputeImageStats(raw []byte) (ImageStats, error) {
	sample, err := DecodeSample(raw)
	if err != nil {
		return ImageStats{}, err
	}
	return ComputeStats(sample), nil
}

// ComputeStats computes the descriptors of an already decoded sample. The
// four scans only read the sample's planes and are independent, so they run
// concurrently. A degenerate sample yields zero-filled stats.
func ComputeStats(s *ImageSample) ImageStats {
	st := ImageStats{Width: s.Width, Height: s.Height}
	if s.Width <= 0 || s.Height <= 0 || len(s.Lum) == 0 {
		return st
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		st.Brightness, st.Contrast = luminanceMoments(s.Lum)
	}()
	go func() {
		defer wg.Done()
		st.Blur = laplacianVariance(s.Lum, s.Width, s.Height)
	}()
	go func() {
		defer wg.Done()
		st.BackgroundStdDev = borderStdDev(s.Lum, s.Width, s.Height)
	}()
	if s.Channels >= 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.RMean, st.GMean, st.BMean = channelMeans(s.Pix, s.Channels)
			st.RGBBalanceDelta = maxPairwiseDelta(st.RMean, st.GMean, st.BMean)
		}()
	}
	wg.Wait()

	// With fewer than three channels there is no balance to measure: the
	// channel means collapse to the luminance mean.
	if s.Channels < 3 {
		st.RMean = st.Brightness
		st.GMean = st.Brightness
		st.BMean = st.Brightness
		st.RGBBalanceDelta = 0
	}
	return st
}

// luminanceMoments returns the mean and population standard deviation of the
// luminance plane. Two passes: mean first, then variance, to avoid
// cancellation at 8-bit precision.
func luminanceMoments(lum []uint8) (mean, stdDev float64) {
	n := float64(len(lum))
	var sum float64
	for _, v := range lum {
		sum += float64(v)
	}
	mean = sum / n

	var sumSq float64
	for _, v := range lum {
		d := float64(v) - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / n)
}

// laplacianVariance applies the 3x3 kernel [0,1,0; 1,-4,1; 0,1,0] to every
// interior pixel and returns the population variance of the responses.
func laplacianVariance(lum []uint8, width, height int) float64 {
	if width < 3 || height < 3 {
		return 0
	}
	resp := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		row := y * width
		for x := 1; x < width-1; x++ {
			i := row + x
			v := -4*int(lum[i]) + int(lum[i-1]) + int(lum[i+1]) + int(lum[i-width]) + int(lum[i+width])
			resp = append(resp, float64(v))
		}
	}
	return stat.PopVariance(resp, nil)
}

// borderStdDev samples the 1-pixel border ring, each pixel counted once, and
// returns its population standard deviation.
func borderStdDev(lum []uint8, width, height int) float64 {
	ring := make([]float64, 0, 2*width+2*height)
	for x := 0; x < width; x++ {
		ring = append(ring, float64(lum[x]))
	}
	if height > 1 {
		last := (height - 1) * width
		for x := 0; x < width; x++ {
			ring = append(ring, float64(lum[last+x]))
		}
	}
	for y := 1; y < height-1; y++ {
		ring = append(ring, float64(lum[y*width]))
		if width > 1 {
			ring = append(ring, float64(lum[y*width+width-1]))
		}
	}
	return stat.PopStdDev(ring, nil)
}

func channelMeans(pix []uint8, channels int) (r, g, b float64) {
	n := len(pix) / channels
	if n == 0 {
		return 0, 0, 0
	}
	var sumR, sumG, sumB float64
	for i := 0; i+2 < len(pix); i += channels {
		sumR += float64(pix[i])
		sumG += float64(pix[i+1])
		sumB += float64(pix[i+2])
	}
	fn := float64(n)
	return sumR / fn, sumG / fn, sumB / fn
}

func maxPairwiseDelta(r, g, b float64) float64 {
	return math.Max(math.Abs(r-g), math.Max(math.Abs(g-b), math.Abs(r-b)))
}
