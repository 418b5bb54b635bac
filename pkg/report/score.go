package report

import (
	"math"
	"strings"
)

// Weights is the contribution of each check slot to the aggregate score. The
// defaults sum to 1.0 over the full check set; the scorer renormalizes over
// the checks actually present, so partial submissions are not penalized for
// checks outside their scope.
type Weights struct {
	Photo     float64
	Face      float64
	Signature float64
	Front     float64
	Back      float64
	OCR       float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Photo:     0.20,
		Face:      0.30,
		Signature: 0.10,
		Front:     0.15,
		Back:      0.15,
		OCR:       0.10,
	}
}

// FaceUnavailableCredit is the fraction of the face weight granted when the
// detector could not run. Detector unavailability is an infrastructure
// condition, not evidence the photo is invalid, so it must not be punished as
// a full failure. Empirical constant carried over from production, same as the
// status thresholds below.
const FaceUnavailableCredit = 0.7

const (
	okScoreThreshold      = 85
	flaggedScoreThreshold = 60
)

// ComputeScore aggregates the present check results into an integer 0-100.
// Absent checks are skipped entirely: they contribute neither to the score
// nor to the weight denominator. An empty report scores 0.
func ComputeScore(r *ValidationReport, w Weights) int {
	slots := []struct {
		result *CheckResult
		weight float64
		isFace bool
	}{
		{r.Photo, w.Photo, false},
		{r.Face, w.Face, true},
		{r.Signature, w.Signature, false},
		{r.Front, w.Front, false},
		{r.Back, w.Back, false},
		{r.OCR, w.OCR, false},
	}

	var totalWeight, earned float64
	for _, s := range slots {
		if s.result == nil {
			continue
		}
		totalWeight += s.weight
		switch {
		case s.result.OK:
			earned += s.weight
		case s.isFace && hasUnavailableMarker(s.result.Messages):
			earned += s.weight * FaceUnavailableCredit
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(100 * earned / totalWeight))
}

// FinalizeStatus derives the tri-state status from the report score and
// assigns it. Thresholds are deployment-time constants, not per-request
// parameters.
func FinalizeStatus(r *ValidationReport) Status {
	switch {
	case r.Score >= okScoreThreshold:
		r.Status = StatusOK
	case r.Score >= flaggedScoreThreshold:
		r.Status = StatusFlagged
	default:
		r.Status = StatusFailed
	}
	return r.Status
}

func hasUnavailableMarker(messages []string) bool {
	for _, m := range messages {
		if strings.Contains(m, faceUnavailableNeedle) {
			return true
		}
	}
	return false
}
