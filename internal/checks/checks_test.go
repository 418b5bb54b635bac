package checks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go-kyc-intake/internal/imaging"
	"go-kyc-intake/internal/ocr"
	"go-kyc-intake/pkg/report"
)

func goodPhotoStats() imaging.ImageStats {
	return imaging.ImageStats{
		Width:            800,
		Height:           800,
		Brightness:       130,
		Contrast:         45,
		Blur:             500,
		BackgroundStdDev: 10,
		RGBBalanceDelta:  12,
	}
}

func TestPhoto_GoodImage(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())
	result := e.Photo(goodPhotoStats())

	if !result.OK {
		t.Errorf("Expected passing photo check, got messages %v", result.Messages)
	}
	if len(result.Messages) != 0 {
		t.Errorf("Expected no messages, got %v", result.Messages)
	}
}

func TestPhoto_Failures(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	tests := []struct {
		name   string
		mutate func(*imaging.ImageStats)
		needle string
	}{
		{"too dark", func(s *imaging.ImageStats) { s.Brightness = 40 }, "trop sombre"},
		{"too bright", func(s *imaging.ImageStats) { s.Brightness = 240 }, "trop claire"},
		{"flat", func(s *imaging.ImageStats) { s.Contrast = 5 }, "trop uniforme"},
		{"blurry", func(s *imaging.ImageStats) { s.Blur = 20 }, "floue"},
		{"busy background", func(s *imaging.ImageStats) { s.BackgroundStdDev = 90 }, "Arrière-plan"},
		{"color cast", func(s *imaging.ImageStats) { s.RGBBalanceDelta = 80 }, "Couleurs anormales"},
	}

	for _, tt := range tests {
		stats := goodPhotoStats()
		tt.mutate(&stats)
		result := e.Photo(stats)

		if result.OK {
			t.Errorf("%s: expected failing check", tt.name)
			continue
		}
		if !containsSubstring(result.Messages, tt.needle) {
			t.Errorf("%s: expected a message containing %q, got %v", tt.name, tt.needle, result.Messages)
		}
	}
}

func TestPhoto_StatsCarried(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())
	result := e.Photo(goodPhotoStats())

	for _, key := range []string{"brightness", "contrast", "blur", "background_std_dev", "rgb_balance_delta"} {
		if _, ok := result.Stats[key]; !ok {
			t.Errorf("Expected stat %q to be present", key)
		}
	}
}

func TestDocumentSide(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	good := imaging.ImageStats{Width: 1200, Height: 800, Brightness: 150, Blur: 400}
	if result := e.DocumentSide(good, "front"); !result.OK {
		t.Errorf("Expected passing document check, got %v", result.Messages)
	}

	small := imaging.ImageStats{Width: 300, Height: 200, Brightness: 150, Blur: 400}
	if result := e.DocumentSide(small, "front"); result.OK {
		t.Error("Expected failure for undersized document")
	}

	// The document sharpness floor is stricter than the portrait floor.
	soft := imaging.ImageStats{Width: 1200, Height: 800, Brightness: 150, Blur: 200}
	if result := e.DocumentSide(soft, "back"); result.OK {
		t.Error("Expected failure for soft document scan")
	}
}

func signatureSample(width, height int, darkRows int) *imaging.ImageSample {
	lum := make([]uint8, width*height)
	for i := range lum {
		lum[i] = 255
	}
	// Ink strokes at the very bottom of the signature zone.
	for y := height - darkRows; y < height; y++ {
		for x := 0; x < width; x++ {
			lum[y*width+x] = 20
		}
	}
	return &imaging.ImageSample{Width: width, Height: height, Lum: lum, Channels: 1}
}

func TestSignature(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	// 3 dark rows out of 30 in the bottom third (rows 60-89): coverage 0.1.
	signed := signatureSample(90, 90, 3)
	if result := e.Signature(signed); !result.OK {
		t.Errorf("Expected signature to pass, got %v", result.Messages)
	}

	blank := signatureSample(90, 90, 0)
	result := e.Signature(blank)
	if result.OK {
		t.Error("Expected failure for blank signature zone")
	}
	if !containsSubstring(result.Messages, "Signature absente") {
		t.Errorf("Expected missing-signature message, got %v", result.Messages)
	}

	// The whole bottom third dark reads as a shadow, not a signature.
	shadowed := signatureSample(90, 90, 30)
	result = e.Signature(shadowed)
	if result.OK {
		t.Error("Expected failure for shadowed signature zone")
	}
	if !containsSubstring(result.Messages, "illisible") {
		t.Errorf("Expected illegible-zone message, got %v", result.Messages)
	}
}

type fakeDetector struct {
	detection *FaceDetection
	err       error
}

func (f *fakeDetector) Detect(context.Context, []byte) (*FaceDetection, error) {
	return f.detection, f.err
}

func TestFace_SingleConfidentFace(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())
	detector := &fakeDetector{detection: &FaceDetection{
		Count:      1,
		Confidence: 0.93,
		Box:        FaceBox{X: 10, Y: 20, Width: 100, Height: 120},
	}}

	result := e.Face(context.Background(), detector, []byte("img"))
	if !result.OK {
		t.Errorf("Expected passing face check, got %v", result.Messages)
	}
	if result.Stats["face_count"] != report.Number(1) {
		t.Errorf("Expected face_count 1, got %v", result.Stats["face_count"])
	}
}

func TestFace_Negatives(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	tests := []struct {
		name      string
		detection *FaceDetection
		needle    string
	}{
		{"no face", &FaceDetection{Count: 0}, "Aucun visage"},
		{"multiple faces", &FaceDetection{Count: 2, Confidence: 0.9}, "Plusieurs visages"},
		{"low confidence", &FaceDetection{Count: 1, Confidence: 0.2}, "difficile à reconnaître"},
	}

	for _, tt := range tests {
		result := e.Face(context.Background(), &fakeDetector{detection: tt.detection}, nil)
		if result.OK {
			t.Errorf("%s: expected failing check", tt.name)
			continue
		}
		if !containsSubstring(result.Messages, tt.needle) {
			t.Errorf("%s: expected message containing %q, got %v", tt.name, tt.needle, result.Messages)
		}
		// A negative detection is not an outage; it must not carry the
		// compensation marker.
		if containsSubstring(result.Messages, "temporairement indisponible") {
			t.Errorf("%s: negative detection must not use the unavailability marker", tt.name)
		}
	}
}

func TestFace_DetectorUnavailable(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	result := e.Face(context.Background(), &fakeDetector{err: ErrDetectorUnavailable}, nil)
	if result.OK {
		t.Error("Expected failing check on detector outage")
	}
	if !containsSubstring(result.Messages, report.FaceUnavailableMarker) {
		t.Errorf("Expected the unavailability marker, got %v", result.Messages)
	}
}

func TestFace_UnexpectedDetectorError(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	result := e.Face(context.Background(), &fakeDetector{err: errors.New("boom")}, nil)
	if result.OK {
		t.Error("Expected failing check")
	}
	if _, ok := result.Stats["detector_error"]; !ok {
		t.Error("Expected the unexpected error to be recorded in stats")
	}
}

func TestOCRText(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())

	extract := ocr.LicenceBackExtract{
		Categories: []string{"B"},
		IssueDate:  "2015-02-01",
		ExpiryDate: "2030-02-01",
	}
	result := e.OCRText(extract, "B 01.02.2015 | 01.02.2030", "")
	if !result.OK {
		t.Errorf("Expected passing ocr check, got %v", result.Messages)
	}
	if result.Stats["docTypeDetected"] != report.String("licence_back") {
		t.Errorf("Expected licence_back, got %v", result.Stats["docTypeDetected"])
	}

	result = e.OCRText(ocr.LicenceBackExtract{}, "illisible", "")
	if result.OK {
		t.Error("Expected failure for empty extract")
	}
	if !containsSubstring(result.Messages, "Catégories") || !containsSubstring(result.Messages, "Dates de validité") {
		t.Errorf("Expected category and date messages, got %v", result.Messages)
	}
	if result.Stats["docTypeDetected"] != report.String("unknown") {
		t.Errorf("Expected unknown doc type, got %v", result.Stats["docTypeDetected"])
	}
}

func TestOCRText_ExpectedTextMismatch(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())
	extract := ocr.LicenceBackExtract{
		Categories: []string{"B"},
		IssueDate:  "2015-02-01",
		ExpiryDate: "2030-02-01",
	}

	result := e.OCRText(extract, "B 01.02.2015 | 01.02.2030", "TEXTE TOTALEMENT DIFFERENT XXXXX YYYYY")
	if result.OK {
		t.Error("Expected failure on declared-text mismatch")
	}
	if _, ok := result.Stats["text_similarity"]; !ok {
		t.Error("Expected text_similarity stat")
	}
	if _, ok := result.Stats["word_error_rate"]; !ok {
		t.Error("Expected word_error_rate stat")
	}
}

func TestSuggestion(t *testing.T) {
	failed := &report.CheckResult{OK: false, Messages: []string{"Photo floue."}}
	got := Suggestion("photo", failed)
	if len(got) != 1 || got[0] != "[photo] Photo floue." {
		t.Errorf("Unexpected suggestions %v", got)
	}

	if Suggestion("photo", &report.CheckResult{OK: true}) != nil {
		t.Error("Expected no suggestions for a passing check")
	}
	if Suggestion("photo", nil) != nil {
		t.Error("Expected no suggestions for an absent check")
	}
}

func containsSubstring(messages []string, needle string) bool {
	for _, m := range messages {
		if strings.Contains(m, needle) {
			return true
		}
	}
	return false
}
